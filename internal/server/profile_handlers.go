package server

import (
	"github.com/gofiber/fiber/v2"
)

// Profile serves one page of an author's posts plus the profile counters;
// 404 when the username is unknown. For authenticated readers the response
// reports whether they follow this author.
func (s *Server) Profile(c *fiber.Ctx) error {
	listing, err := s.postService.ListByAuthor(
		c.UserContext(), c.Params("username"), pageNumber(c), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"author":          listing.Author,
		"page":            s.summarizePage(listing.Page),
		"posts_count":     listing.PostsCount,
		"followers_count": listing.FollowersCount,
		"following_count": listing.FollowingCount,
		"following":       listing.Following,
	})
}
