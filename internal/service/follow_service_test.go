package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/atims0208/fieldhouse/internal/cache"
	"github.com/atims0208/fieldhouse/internal/repository"
)

// newFollowService wires the service against sqlite and an unreachable
// redis; count reads must fall back to the database.
func newFollowService(t *testing.T) (FollowService, *gorm.DB, func(t *testing.T, username string) string) {
	t.Helper()

	db := newServiceTestDB(t)
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	followCache := cache.NewFollowCache(client, time.Minute)

	svc := NewFollowService(repository.NewGormFollowRepository(db), repository.NewGormUserRepository(db), followCache)

	seed := func(t *testing.T, username string) string {
		return seedAccount(t, db, username, 0)
	}
	return svc, db, seed
}

func TestFollowService_FollowRules(t *testing.T) {
	ctx := context.Background()
	svc, db, seed := newFollowService(t)

	alice := seed(t, "alice")
	bob := seed(t, "bob")

	t.Run("follow and check", func(t *testing.T) {
		require.NoError(t, svc.Follow(ctx, alice, bob))

		following, err := svc.IsFollowing(ctx, alice, bob)
		require.NoError(t, err)
		assert.True(t, following)
	})

	t.Run("following again is idempotent", func(t *testing.T) {
		require.NoError(t, svc.Follow(ctx, alice, bob))
	})

	t.Run("cannot follow yourself", func(t *testing.T) {
		require.ErrorIs(t, svc.Follow(ctx, alice, alice), ErrSelfFollow)
	})

	t.Run("cannot follow a missing user", func(t *testing.T) {
		err := svc.Follow(ctx, alice, "missing")
		require.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("cannot follow a banned user", func(t *testing.T) {
		banned := seed(t, "troll")
		require.NoError(t, repository.NewGormUserRepository(db).SetBanned(ctx, banned, true))

		require.ErrorIs(t, svc.Follow(ctx, alice, banned), ErrUserBanned)
	})

	t.Run("unfollow is idempotent", func(t *testing.T) {
		require.NoError(t, svc.Unfollow(ctx, alice, bob))
		require.NoError(t, svc.Unfollow(ctx, alice, bob))

		following, err := svc.IsFollowing(ctx, alice, bob)
		require.NoError(t, err)
		assert.False(t, following)
	})
}

func TestFollowService_StatsAndLists(t *testing.T) {
	ctx := context.Background()
	svc, _, seed := newFollowService(t)

	streamer := seed(t, "streamer")
	fan1 := seed(t, "fan1")
	fan2 := seed(t, "fan2")
	require.NoError(t, svc.Follow(ctx, fan1, streamer))
	require.NoError(t, svc.Follow(ctx, fan2, streamer))
	require.NoError(t, svc.Follow(ctx, streamer, fan1))

	t.Run("stats by username with cache down", func(t *testing.T) {
		stats, err := svc.GetStats(ctx, "streamer")
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.FollowerCount)
		assert.Equal(t, int64(1), stats.FollowingCount)
	})

	t.Run("stats for unknown username", func(t *testing.T) {
		_, err := svc.GetStats(ctx, "nobody")
		require.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("followers resolve to profiles", func(t *testing.T) {
		list, err := svc.ListFollowers(ctx, "streamer", 1, 20)
		require.NoError(t, err)
		assert.Equal(t, 2, list.Total)
		require.Len(t, list.Users, 2)

		names := []string{list.Users[0].Username, list.Users[1].Username}
		assert.ElementsMatch(t, []string{"fan1", "fan2"}, names)
	})

	t.Run("following resolve to profiles", func(t *testing.T) {
		list, err := svc.ListFollowing(ctx, "streamer", 1, 20)
		require.NoError(t, err)
		require.Len(t, list.Users, 1)
		assert.Equal(t, "fan1", list.Users[0].Username)
	})
}
