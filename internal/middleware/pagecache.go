package middleware

import (
	"time"

	"yatube/internal/cache"
	"yatube/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// PageCache caches successful GET responses as raw bytes keyed by the full
// request path including the query string, so each page of a listing caches
// independently. Within the TTL the cached bytes are replayed verbatim even
// if the underlying data changed; writes are not observed. Expiry or an
// explicit cache.ClearPages recomputes on the next request.
func PageCache(ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet {
			return c.Next()
		}

		path := c.OriginalURL()
		if body, ok := cache.GetPage(c.UserContext(), path); ok {
			observability.PageCacheHits.WithLabelValues(c.Route().Path).Inc()
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(body)
		}
		observability.PageCacheMisses.WithLabelValues(c.Route().Path).Inc()

		if err := c.Next(); err != nil {
			return err
		}

		if c.Response().StatusCode() == fiber.StatusOK {
			// The response buffer is reused by fasthttp; copy before storing.
			src := c.Response().Body()
			body := make([]byte, len(src))
			copy(body, src)
			cache.SetPage(c.UserContext(), path, body, ttl)
		}
		return nil
	}
}
