package repository

import (
	"context"

	"microblog/internal/models"
	"microblog/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository manages the directed follow graph.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followedID uint) error
	Unfollow(ctx context.Context, followerID, followedID uint) error
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	Counts(ctx context.Context, userID uint) (followers, following int64, err error)
}

type followRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db, log: observability.NewRepoLogger("follows")}
}

// Follow inserts the edge; an existing edge is left untouched.
func (r *followRepository) Follow(ctx context.Context, followerID, followedID uint) error {
	edge := models.Follow{FollowerID: followerID, FollowedID: followedID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge).Error
	if err != nil {
		r.log.LogError(ctx, err, "follow")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, "follower_id", followerID, "followed_id", followedID)
	return nil
}

// Unfollow removes the edge. Removing an absent edge is not an error.
func (r *followRepository) Unfollow(ctx context.Context, followerID, followedID uint) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{}).Error
	if err != nil {
		r.log.LogError(ctx, err, "unfollow")
		return models.NewInternalError(err)
	}
	r.log.LogDelete(ctx, "follower_id", followerID, "followed_id", followedID)
	return nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) Counts(ctx context.Context, userID uint) (int64, int64, error) {
	var followers, following int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("followed_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	return followers, following, nil
}
