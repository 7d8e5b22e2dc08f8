package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"yatube/internal/models"
)

func profilePath(username string) string {
	return "/profile/" + username + "/"
}

// FeedFollow serves one page of posts from every author the current user
// follows.
func (s *Server) FeedFollow(c *fiber.Ctx) error {
	page, err := s.postService.ListFeed(c.UserContext(), currentUserID(c), pageNumber(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"page": s.summarizePage(page)})
}

// ProfileFollow subscribes the current user to the named author. Following
// yourself or an author you already follow changes nothing; either way the
// reader lands back on the profile page.
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	author, err := s.followService.Follow(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeSelfFollow {
			return c.Redirect(profilePath(author.Username), fiber.StatusFound)
		}
		return respondServiceError(c, err)
	}

	return c.Redirect(profilePath(author.Username), fiber.StatusFound)
}

// ProfileUnfollow removes the subscription if it exists and redirects to the
// profile page.
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	author, err := s.followService.Unfollow(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Redirect(profilePath(author.Username), fiber.StatusFound)
}
