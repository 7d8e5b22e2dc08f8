package server

import (
	"github.com/gofiber/fiber/v2"
)

// GroupPosts serves one page of a group's posts; 404 when the slug is unknown.
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	listing, err := s.postService.ListByGroup(c.UserContext(), c.Params("slug"), pageNumber(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"group": listing.Group,
		"page":  s.summarizePage(listing.Page),
	})
}
