package service

import (
	"context"
	"errors"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"

	"gorm.io/gorm"
)

// FollowService creates and removes follow edges. Both operations are
// idempotent: following twice leaves one edge, unfollowing an absent edge
// is a no-op. Self-follow is rejected without creating anything.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService creates a new follow service
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// resolveAuthor looks up the target author by username.
func (s *FollowService) resolveAuthor(ctx context.Context, username string) (*models.User, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, models.NewInternalError(err)
	}
	return author, nil
}

// Follow creates the edge follower -> author. It returns the target author
// so callers can redirect to the profile whether or not anything changed.
func (s *FollowService) Follow(ctx context.Context, followerID uint, username string) (*models.User, error) {
	author, err := s.resolveAuthor(ctx, username)
	if err != nil {
		return nil, err
	}

	if author.ID == followerID {
		observability.FollowMutations.WithLabelValues("follow", "self_rejected").Inc()
		return author, models.NewSelfFollowError()
	}

	if err := s.followRepo.Create(ctx, followerID, author.ID); err != nil {
		return author, models.NewInternalError(err)
	}
	observability.FollowMutations.WithLabelValues("follow", "ok").Inc()
	return author, nil
}

// Unfollow removes the edge follower -> author if it exists.
func (s *FollowService) Unfollow(ctx context.Context, followerID uint, username string) (*models.User, error) {
	author, err := s.resolveAuthor(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := s.followRepo.Delete(ctx, followerID, author.ID); err != nil {
		return author, models.NewInternalError(err)
	}
	observability.FollowMutations.WithLabelValues("unfollow", "ok").Inc()
	return author, nil
}
