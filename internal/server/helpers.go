package server

import (
	"errors"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 404 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", c.Params(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// pageNumber reads the page query parameter, defaulting to 1 when absent
// or unparseable.
func pageNumber(c *fiber.Ctx) int {
	return pagination.ParsePageNumber(c.Query("page"))
}

// currentUserID returns the authenticated user's ID, or zero for anonymous
// requests.
func currentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

// respondServiceError translates an AppError from the service layer into the
// user-visible outcome: 404 for missing resources, 400 for validation
// failures, a login redirect for unauthorized access, 500 otherwise.
// Forbidden and self-follow outcomes are redirects and are handled at the
// call sites that know the destination.
func respondServiceError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeNotFound:
			return models.RespondWithError(c, fiber.StatusNotFound, err)
		case models.CodeValidation:
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		case models.CodeUnauthorized:
			return middleware.RedirectToLogin(c)
		}
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}

// postSummary augments a post with its display excerpt.
type postSummary struct {
	*models.Post
	Excerpt string `json:"excerpt"`
}

// summarizePage converts a page of posts into a page of summaries carrying
// the configured excerpt length.
func (s *Server) summarizePage(p pagination.Page[*models.Post]) pagination.Page[postSummary] {
	items := make([]postSummary, len(p.Items))
	for i, post := range p.Items {
		items[i] = postSummary{Post: post, Excerpt: post.Excerpt(s.config.ExcerptLength)}
	}
	return pagination.Page[postSummary]{
		Items:       items,
		Number:      p.Number,
		NumPages:    p.NumPages,
		Count:       p.Count,
		HasPrevious: p.HasPrevious,
		HasNext:     p.HasNext,
	}
}
