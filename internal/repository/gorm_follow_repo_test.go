package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormFollowRepository_FollowUnfollow(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormFollowRepository(db)

	alice := seedUser(t, db, 0)
	bob := seedUser(t, db, 0)

	t.Run("follow then check", func(t *testing.T) {
		require.NoError(t, repo.Follow(ctx, alice, bob))

		following, err := repo.IsFollowing(ctx, alice, bob)
		require.NoError(t, err)
		assert.True(t, following)

		// Relation is directional.
		following, err = repo.IsFollowing(ctx, bob, alice)
		require.NoError(t, err)
		assert.False(t, following)
	})

	t.Run("duplicate follow is rejected", func(t *testing.T) {
		err := repo.Follow(ctx, alice, bob)
		require.ErrorIs(t, err, ErrAlreadyFollowing)
	})

	t.Run("unfollow removes the relation", func(t *testing.T) {
		require.NoError(t, repo.Unfollow(ctx, alice, bob))

		following, err := repo.IsFollowing(ctx, alice, bob)
		require.NoError(t, err)
		assert.False(t, following)
	})

	t.Run("unfollow without a relation", func(t *testing.T) {
		err := repo.Unfollow(ctx, alice, bob)
		require.ErrorIs(t, err, ErrFollowNotFound)
	})

	t.Run("re-follow restores the soft-deleted row", func(t *testing.T) {
		require.NoError(t, repo.Follow(ctx, alice, bob))

		following, err := repo.IsFollowing(ctx, alice, bob)
		require.NoError(t, err)
		assert.True(t, following)

		count, err := repo.GetFollowerCount(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestGormFollowRepository_CountsAndLists(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormFollowRepository(db)

	streamer := seedUser(t, db, 0)
	fans := make([]string, 3)
	for i := range fans {
		fans[i] = seedUser(t, db, 0)
		require.NoError(t, repo.Follow(ctx, fans[i], streamer))
	}
	require.NoError(t, repo.Follow(ctx, streamer, fans[0]))

	followerCount, err := repo.GetFollowerCount(ctx, streamer)
	require.NoError(t, err)
	assert.Equal(t, int64(3), followerCount)

	followingCount, err := repo.GetFollowingCount(ctx, streamer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followingCount)

	followers, total, err := repo.ListFollowers(ctx, streamer, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, followers, 2)

	followers, _, err = repo.ListFollowers(ctx, streamer, 2, 2)
	require.NoError(t, err)
	assert.Len(t, followers, 1)

	following, total, err := repo.ListFollowing(ctx, streamer, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, following, 1)
	assert.Equal(t, fans[0], following[0])
}
