package server

import (
	"errors"
	"fmt"

	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postDetailPath builds the redirect target for soft-denied mutations.
func postDetailPath(postID uint) string {
	return fmt.Sprintf("/posts/%d/", postID)
}

// postForm is the shared request body for creating and editing posts.
type postForm struct {
	Text     string `json:"text"`
	GroupID  *uint  `json:"group_id"`
	ImageURL string `json:"image_url"`
}

// Index serves the global feed, newest first. The page cache middleware in
// front of this handler replays the rendered bytes within the TTL.
func (s *Server) Index(c *fiber.Ctx) error {
	page, err := s.postService.ListAll(c.UserContext(), pageNumber(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"page": s.summarizePage(page)})
}

// PostDetail returns a post with its comments.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	comments, err := s.commentService.ListComments(c.UserContext(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"post":     post,
		"comments": comments,
	})
}

// NewPostForm describes the authoring form to authenticated clients.
func (s *Server) NewPostForm(c *fiber.Ctx) error {
	groups, err := s.groupRepo.List(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{
		"fields": []string{"text", "group_id", "image_url"},
		"groups": groups,
	})
}

// CreatePost creates a post owned by the authenticated user.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req postForm
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID: userID,
		Text:     req.Text,
		GroupID:  req.GroupID,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// EditPostForm returns the post for editing. A non-author is forwarded to
// the post's detail view instead.
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	userID := currentUserID(c)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if post.AuthorID != userID {
		return c.Redirect(postDetailPath(postID), fiber.StatusFound)
	}

	return c.JSON(fiber.Map{
		"post":    post,
		"is_edit": true,
	})
}

// EditPost applies the edit form. Only the author may mutate; anyone else
// is forwarded to the detail view with nothing applied.
func (s *Server) EditPost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req postForm
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:   userID,
		PostID:   postID,
		Text:     req.Text,
		GroupID:  req.GroupID,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeForbidden {
			return c.Redirect(postDetailPath(postID), fiber.StatusFound)
		}
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// DeletePost removes the authenticated author's post. Non-authors are
// forwarded to the detail view.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), userID, postID); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeForbidden {
			return c.Redirect(postDetailPath(postID), fiber.StatusFound)
		}
		return respondServiceError(c, err)
	}

	return c.Redirect("/", fiber.StatusFound)
}
