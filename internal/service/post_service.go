// Package service implements the application's business logic over the
// repository layer: post listings, access control and follow management.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"yatube/internal/cache"
	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/internal/repository"

	"gorm.io/gorm"
)

// groupCacheTTL bounds staleness of cached group records. Groups are
// created administratively and effectively immutable at runtime.
const groupCacheTTL = 5 * time.Minute

// PostService builds filtered, ordered, paginated post listings and guards
// post mutations behind authorship checks.
type PostService struct {
	postRepo   repository.PostRepository
	groupRepo  repository.GroupRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	pageSize   int
}

// NewPostService creates a new post service. pageSize is the configured
// number of posts per page for every listing.
func NewPostService(
	postRepo repository.PostRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	pageSize int,
) *PostService {
	if pageSize < 1 {
		pageSize = 1
	}
	return &PostService{
		postRepo:   postRepo,
		groupRepo:  groupRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
		pageSize:   pageSize,
	}
}

// CreatePostInput carries the authoring form fields.
type CreatePostInput struct {
	AuthorID uint
	Text     string
	GroupID  *uint
	ImageURL string
}

// UpdatePostInput carries the edit form fields. Only the author may apply it.
type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Text     string
	GroupID  *uint
	ImageURL string
}

// GroupListing is a group's page of posts plus the group itself.
type GroupListing struct {
	Group *models.Group                  `json:"group"`
	Page  pagination.Page[*models.Post] `json:"page"`
}

// ProfileListing is an author's page of posts plus the profile counters.
type ProfileListing struct {
	Author         *models.User                   `json:"author"`
	Page           pagination.Page[*models.Post] `json:"page"`
	PostsCount     int64                          `json:"posts_count"`
	FollowersCount int64                          `json:"followers_count"`
	FollowingCount int64                          `json:"following_count"`
	// Following reports whether the requesting user follows this author;
	// always false for anonymous requests.
	Following bool `json:"following"`
}

// page resolves the clamped page window for count items and returns the
// clamped page number and offset.
func (s *PostService) page(count int64, number int) (int, int) {
	numPages := pagination.NumPages(int(count), s.pageSize)
	number = pagination.ClampPage(number, numPages)
	return number, pagination.Offset(number, s.pageSize)
}

// ListAll returns one page of the global feed, newest first.
func (s *PostService) ListAll(ctx context.Context, pageNumber int) (pagination.Page[*models.Post], error) {
	var zero pagination.Page[*models.Post]
	count, err := s.postRepo.CountAll(ctx)
	if err != nil {
		return zero, models.NewInternalError(err)
	}
	number, offset := s.page(count, pageNumber)
	posts, err := s.postRepo.List(ctx, s.pageSize, offset)
	if err != nil {
		return zero, models.NewInternalError(err)
	}
	return pagination.PageOf(posts, int(count), s.pageSize, number), nil
}

// ListByGroup returns one page of a group's posts, failing with NotFound
// when no group matches the slug.
func (s *PostService) ListByGroup(ctx context.Context, slug string, pageNumber int) (*GroupListing, error) {
	var group models.Group
	err := cache.Aside(ctx, "group:slug:"+slug, &group, groupCacheTTL, func() error {
		fetched, err := s.groupRepo.GetBySlug(ctx, slug)
		if err != nil {
			return err
		}
		group = *fetched
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Group", slug)
		}
		return nil, models.NewInternalError(err)
	}

	count, err := s.postRepo.CountByGroup(ctx, group.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	number, offset := s.page(count, pageNumber)
	posts, err := s.postRepo.ListByGroup(ctx, group.ID, s.pageSize, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &GroupListing{
		Group: &group,
		Page:  pagination.PageOf(posts, int(count), s.pageSize, number),
	}, nil
}

// ListByAuthor returns one page of an author's posts plus the post and
// follower counts for profile display. requestingUserID may be zero for
// anonymous readers; it only affects the Following flag.
func (s *PostService) ListByAuthor(ctx context.Context, username string, pageNumber int, requestingUserID uint) (*ProfileListing, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, models.NewInternalError(err)
	}

	count, err := s.postRepo.CountByAuthor(ctx, author.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	number, offset := s.page(count, pageNumber)
	posts, err := s.postRepo.ListByAuthor(ctx, author.ID, s.pageSize, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	followers, err := s.followRepo.CountFollowers(ctx, author.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	followingCount, err := s.followRepo.CountFollowing(ctx, author.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	following := false
	if requestingUserID != 0 && requestingUserID != author.ID {
		following, err = s.followRepo.Exists(ctx, requestingUserID, author.ID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	return &ProfileListing{
		Author:         author,
		Page:           pagination.PageOf(posts, int(count), s.pageSize, number),
		PostsCount:     count,
		FollowersCount: followers,
		FollowingCount: followingCount,
		Following:      following,
	}, nil
}

// ListFeed returns one page of posts authored by users the requesting user
// follows. An unauthenticated request is rejected.
func (s *PostService) ListFeed(ctx context.Context, userID uint, pageNumber int) (pagination.Page[*models.Post], error) {
	var zero pagination.Page[*models.Post]
	if userID == 0 {
		return zero, models.NewUnauthorizedError("Authentication required")
	}
	count, err := s.postRepo.CountFeed(ctx, userID)
	if err != nil {
		return zero, models.NewInternalError(err)
	}
	number, offset := s.page(count, pageNumber)
	posts, err := s.postRepo.ListFeed(ctx, userID, s.pageSize, offset)
	if err != nil {
		return zero, models.NewInternalError(err)
	}
	return pagination.PageOf(posts, int(count), s.pageSize, number), nil
}

// GetPost returns a post and its comments, NotFound when missing.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

// CreatePost validates and persists a new post.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, models.NewValidationError("Text is required")
	}
	if in.GroupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *in.GroupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewValidationError("Unknown group")
			}
			return nil, models.NewInternalError(err)
		}
	}

	post := &models.Post{
		Text:     in.Text,
		AuthorID: in.AuthorID,
		GroupID:  in.GroupID,
		ImageURL: in.ImageURL,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.GetPost(ctx, post.ID)
}

// UpdatePost applies the edit form to a post. A non-author caller gets a
// Forbidden error and the stored post stays untouched; handlers translate
// that into a redirect to the post's detail view.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.GetPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("Only the author may edit this post")
	}

	if strings.TrimSpace(in.Text) == "" {
		return nil, models.NewValidationError("Text is required")
	}
	if in.GroupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *in.GroupID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewValidationError("Unknown group")
			}
			return nil, models.NewInternalError(err)
		}
	}

	post.Text = in.Text
	post.GroupID = in.GroupID
	if in.ImageURL != "" {
		post.ImageURL = in.ImageURL
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.GetPost(ctx, post.ID)
}

// DeletePost removes a post; author only.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return models.NewForbiddenError("Only the author may delete this post")
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
