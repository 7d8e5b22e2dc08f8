package server

import (
	"github.com/gofiber/fiber/v2"

	"yatube/internal/models"
	"yatube/internal/service"
)

type commentForm struct {
	Text string `json:"text" form:"text"`
}

// AddComment attaches a comment to an existing post and redirects back to
// the post detail page.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var form commentForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}

	_, err = s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		PostID:   postID,
		AuthorID: currentUserID(c),
		Text:     form.Text,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Redirect(postDetailPath(postID), fiber.StatusFound)
}
