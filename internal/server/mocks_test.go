package server

import (
	"context"
	"time"

	"microblog/internal/config"
	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	args := m.Called(ctx, username, exceptID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id uint, fields repository.ProfileFields) (*models.User, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) TouchLastSeen(ctx context.Context, id uint, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Post, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) ListFollowed(ctx context.Context, userID uint, limit, offset int) ([]models.Post, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.Post, int64, error) {
	args := m.Called(ctx, authorID, limit, offset)
	return args.Get(0).([]models.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Post, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) MatchTerms(ctx context.Context, terms []string, limit, offset int) ([]uint, int64, error) {
	args := m.Called(ctx, terms, limit, offset)
	return args.Get(0).([]uint), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) ForEachBatch(ctx context.Context, size int, fn func([]models.Post) error) error {
	args := m.Called(ctx, size, fn)
	return args.Error(0)
}

// MockFollowRepository is a mock of the FollowRepository interface
type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) Follow(ctx context.Context, followerID, followedID uint) error {
	args := m.Called(ctx, followerID, followedID)
	return args.Error(0)
}

func (m *MockFollowRepository) Unfollow(ctx context.Context, followerID, followedID uint) error {
	args := m.Called(ctx, followerID, followedID)
	return args.Error(0)
}

func (m *MockFollowRepository) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	args := m.Called(ctx, followerID, followedID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) Counts(ctx context.Context, userID uint) (int64, int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

// MockIndex is a mock of the search Index interface
type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) Add(ctx context.Context, id uint, body string) error {
	args := m.Called(ctx, id, body)
	return args.Error(0)
}

func (m *MockIndex) Remove(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockIndex) Query(ctx context.Context, text string, page, perPage int) ([]uint, int64, error) {
	args := m.Called(ctx, text, page, perPage)
	return args.Get(0).([]uint), args.Get(1).(int64), args.Error(2)
}

func (m *MockIndex) Name() string { return "mock" }

type mocks struct {
	users   *MockUserRepository
	posts   *MockPostRepository
	follows *MockFollowRepository
	index   *MockIndex
}

// newMockServer returns a server over fresh mocks with two posts per page,
// and an app whose requests are authenticated as user 1.
func newMockServer() (*Server, *mocks, *fiber.App) {
	m := &mocks{
		users:   new(MockUserRepository),
		posts:   new(MockPostRepository),
		follows: new(MockFollowRepository),
		index:   new(MockIndex),
	}
	s := newServer(&config.Config{PostsPerPage: 2}, m.users, m.posts, m.follows, m.index)

	app := newApp()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(1))
		c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, uint(1)))
		return c.Next()
	})
	return s, m, app
}
