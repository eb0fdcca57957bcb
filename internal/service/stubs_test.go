package service

import (
	"context"
	"time"

	"microblog/internal/models"
	"microblog/internal/repository"
)

type userRepoStub struct {
	getByIDFn       func(ctx context.Context, id uint) (*models.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	usernameTakenFn func(ctx context.Context, username string, exceptID uint) (bool, error)
	updateProfileFn func(ctx context.Context, id uint, fields repository.ProfileFields) (*models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.getByUsernameFn != nil {
		return s.getByUsernameFn(ctx, username)
	}
	return nil, models.NewNotFoundError("User", username)
}

func (s *userRepoStub) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	if s.usernameTakenFn != nil {
		return s.usernameTakenFn(ctx, username, exceptID)
	}
	return false, nil
}

func (s *userRepoStub) Create(context.Context, *models.User) error { return nil }

func (s *userRepoStub) UpdateProfile(ctx context.Context, id uint, fields repository.ProfileFields) (*models.User, error) {
	if s.updateProfileFn != nil {
		return s.updateProfileFn(ctx, id, fields)
	}
	return &models.User{ID: id, Username: fields.Username, FirstName: fields.FirstName, LastName: fields.LastName, AboutMe: fields.AboutMe}, nil
}

func (s *userRepoStub) TouchLastSeen(context.Context, uint, time.Time) error { return nil }

type followRepoStub struct {
	followFn      func(ctx context.Context, followerID, followedID uint) error
	unfollowFn    func(ctx context.Context, followerID, followedID uint) error
	isFollowingFn func(ctx context.Context, followerID, followedID uint) (bool, error)
	countsFn      func(ctx context.Context, userID uint) (int64, int64, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followedID uint) error {
	if s.followFn != nil {
		return s.followFn(ctx, followerID, followedID)
	}
	return nil
}

func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followedID uint) error {
	if s.unfollowFn != nil {
		return s.unfollowFn(ctx, followerID, followedID)
	}
	return nil
}

func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	if s.isFollowingFn != nil {
		return s.isFollowingFn(ctx, followerID, followedID)
	}
	return false, nil
}

func (s *followRepoStub) Counts(ctx context.Context, userID uint) (int64, int64, error) {
	if s.countsFn != nil {
		return s.countsFn(ctx, userID)
	}
	return 0, 0, nil
}

type postRepoStub struct {
	createFn func(ctx context.Context, post *models.Post) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	if s.createFn != nil {
		return s.createFn(ctx, post)
	}
	return nil
}

func (s *postRepoStub) GetByIDs(context.Context, []uint) ([]models.Post, error) { return nil, nil }

func (s *postRepoStub) ListFollowed(context.Context, uint, int, int) ([]models.Post, int64, error) {
	return nil, 0, nil
}

func (s *postRepoStub) ListByAuthor(context.Context, uint, int, int) ([]models.Post, int64, error) {
	return nil, 0, nil
}

func (s *postRepoStub) ListAll(context.Context, int, int) ([]models.Post, int64, error) {
	return nil, 0, nil
}

func (s *postRepoStub) MatchTerms(context.Context, []string, int, int) ([]uint, int64, error) {
	return nil, 0, nil
}

func (s *postRepoStub) ForEachBatch(context.Context, int, func([]models.Post) error) error {
	return nil
}

type indexStub struct {
	added  map[uint]string
	addErr error
}

func (s *indexStub) Add(_ context.Context, id uint, body string) error {
	if s.addErr != nil {
		return s.addErr
	}
	if s.added == nil {
		s.added = make(map[uint]string)
	}
	s.added[id] = body
	return nil
}

func (s *indexStub) Remove(context.Context, uint) error { return nil }

func (s *indexStub) Query(context.Context, string, int, int) ([]uint, int64, error) {
	return nil, 0, nil
}

func (s *indexStub) Name() string { return "stub" }
