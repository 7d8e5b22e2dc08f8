package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// The page cache stores previously rendered response bytes keyed by the
// full request path including the query string, so distinct pages of the
// same listing cache independently. Entries expire after a fixed TTL and
// are never invalidated by writes; staleness is bounded by the TTL only.

const pageKeyPrefix = "page:"

// PageKey derives the cache key for a request path (including query string).
func PageKey(path string) string {
	return fmt.Sprintf("%s%s", pageKeyPrefix, path)
}

// GetPage returns the cached response bytes for path, if present.
func GetPage(ctx context.Context, path string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	b, err := client.Get(ctx, PageKey(path)).Bytes()
	if errors.Is(err, redis.Nil) || err != nil {
		return nil, false
	}
	return b, true
}

// SetPage stores response bytes for path with the given TTL, best-effort.
func SetPage(ctx context.Context, path string, body []byte, ttl time.Duration) {
	if client == nil || ttl <= 0 {
		return
	}
	client.Set(ctx, PageKey(path), body, ttl)
}

// ClearPages drops every cached page. This is the explicit cache-clear
// operation; the next read of each page recomputes and re-caches.
func ClearPages(ctx context.Context) error {
	if client == nil {
		return nil
	}
	iter := client.Scan(ctx, 0, pageKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return client.Del(ctx, keys...).Err()
	}
	return nil
}
