package service

import (
	"context"
	"testing"

	"microblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type edge struct{ from, to uint }

// graphStub is a follow repository backed by an in-memory edge set.
func graphStub(edges map[edge]bool) *followRepoStub {
	return &followRepoStub{
		followFn: func(_ context.Context, from, to uint) error {
			edges[edge{from, to}] = true
			return nil
		},
		unfollowFn: func(_ context.Context, from, to uint) error {
			delete(edges, edge{from, to})
			return nil
		},
	}
}

func namedUsers() *userRepoStub {
	byName := map[string]*models.User{
		"susan": {ID: 1, Username: "susan"},
		"john":  {ID: 2, Username: "john"},
	}
	return &userRepoStub{getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
		if u, ok := byName[username]; ok {
			return u, nil
		}
		return nil, models.NewNotFoundError("User", username)
	}}
}

func TestFollowService_FollowIsIdempotent(t *testing.T) {
	edges := map[edge]bool{}
	svc := NewFollowService(graphStub(edges), namedUsers())

	target, err := svc.Follow(context.Background(), 1, "john")
	require.NoError(t, err)
	assert.Equal(t, "john", target.Username)

	_, err = svc.Follow(context.Background(), 1, "john")
	require.NoError(t, err)
	assert.Equal(t, map[edge]bool{{1, 2}: true}, edges)
}

func TestFollowService_UnfollowIsIdempotent(t *testing.T) {
	edges := map[edge]bool{{1, 2}: true}
	svc := NewFollowService(graphStub(edges), namedUsers())

	_, err := svc.Unfollow(context.Background(), 1, "john")
	require.NoError(t, err)
	_, err = svc.Unfollow(context.Background(), 1, "john")
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestFollowService_SelfRejectedWithoutMutation(t *testing.T) {
	edges := map[edge]bool{}
	svc := NewFollowService(graphStub(edges), namedUsers())

	target, err := svc.Follow(context.Background(), 1, "susan")
	assert.True(t, models.HasCode(err, models.CodeSelfFollowRejected))
	require.NotNil(t, target)
	assert.Equal(t, "susan", target.Username)
	assert.Empty(t, edges)

	_, err = svc.Unfollow(context.Background(), 1, "susan")
	assert.True(t, models.HasCode(err, models.CodeSelfFollowRejected))
	assert.Contains(t, err.Error(), "unfollow")
}

func TestFollowService_UnknownTarget(t *testing.T) {
	edges := map[edge]bool{}
	svc := NewFollowService(graphStub(edges), namedUsers())

	target, err := svc.Follow(context.Background(), 1, "ghost")
	assert.Nil(t, target)
	assert.True(t, models.HasCode(err, models.CodeTargetNotFound))
	assert.Contains(t, err.Error(), "ghost")

	_, err = svc.Unfollow(context.Background(), 1, "ghost")
	assert.True(t, models.HasCode(err, models.CodeTargetNotFound))
	assert.Empty(t, edges)
}
