package service

import (
	"context"

	"microblog/internal/models"
	"microblog/internal/repository"
)

// FollowService provides follow and unfollow business logic.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// Follow makes requesterID follow targetUsername and returns the target.
// Following someone already followed is a no-op.
func (s *FollowService) Follow(ctx context.Context, requesterID uint, targetUsername string) (*models.User, error) {
	target, err := s.resolveTarget(ctx, requesterID, targetUsername, "follow")
	if err != nil {
		return target, err
	}
	if err := s.followRepo.Follow(ctx, requesterID, target.ID); err != nil {
		return nil, err
	}
	return target, nil
}

// Unfollow removes the edge if present and returns the target.
func (s *FollowService) Unfollow(ctx context.Context, requesterID uint, targetUsername string) (*models.User, error) {
	target, err := s.resolveTarget(ctx, requesterID, targetUsername, "unfollow")
	if err != nil {
		return target, err
	}
	if err := s.followRepo.Unfollow(ctx, requesterID, target.ID); err != nil {
		return nil, err
	}
	return target, nil
}

// resolveTarget maps an unknown username to TARGET_NOT_FOUND and the
// requester's own name to SELF_FOLLOW_REJECTED. In the latter case the
// target is returned alongside the error so callers can redirect to it.
func (s *FollowService) resolveTarget(ctx context.Context, requesterID uint, username, action string) (*models.User, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewTargetNotFoundError(username)
		}
		return nil, err
	}
	if target.ID == requesterID {
		return target, models.NewSelfFollowError(action)
	}
	return target, nil
}
