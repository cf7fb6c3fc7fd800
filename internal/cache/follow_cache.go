package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const followerCountKeyPrefix = "social:followers:"

// FollowCache caches follower counts in Redis so profile and stream
// pages do not hit the database on every view.
type FollowCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFollowCache creates a Redis-backed follower count cache.
func NewFollowCache(client *redis.Client, ttl time.Duration) *FollowCache {
	return &FollowCache{client: client, ttl: ttl}
}

func followerCountKey(userID string) string {
	return followerCountKeyPrefix + userID
}

// GetFollowerCount returns the cached follower count for a user.
// Returns (count, true, nil) on hit, (0, false, nil) on miss.
func (c *FollowCache) GetFollowerCount(ctx context.Context, userID string) (int64, bool, error) {
	val, err := c.client.Get(ctx, followerCountKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis get follower count: %w", err)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse follower count: %w", err)
	}
	return count, true, nil
}

// SetFollowerCount stores the follower count for a user.
func (c *FollowCache) SetFollowerCount(ctx context.Context, userID string, count int64) error {
	if err := c.client.Set(ctx, followerCountKey(userID), count, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set follower count: %w", err)
	}
	return nil
}

// condIncrScript atomically increments the key only if it exists.
// A missing key stays missing so the next read repopulates from the
// database instead of counting from zero.
var condIncrScript = redis.NewScript(`
local key = KEYS[1]
if redis.call("EXISTS", key) == 1 then
  return redis.call("INCR", key)
end
return 0
`)

// condDecrScript atomically decrements the key only if it exists and
// the stored value is positive.
var condDecrScript = redis.NewScript(`
local key = KEYS[1]
if redis.call("EXISTS", key) == 1 then
  local val = tonumber(redis.call("GET", key))
  if val and val > 0 then
    return redis.call("DECR", key)
  end
end
return 0
`)

// IncrFollowerCount bumps the cached count after a new follow.
func (c *FollowCache) IncrFollowerCount(ctx context.Context, userID string) error {
	err := condIncrScript.Run(ctx, c.client, []string{followerCountKey(userID)}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis incr follower count: %w", err)
	}
	return nil
}

// DecrFollowerCount lowers the cached count after an unfollow.
func (c *FollowCache) DecrFollowerCount(ctx context.Context, userID string) error {
	err := condDecrScript.Run(ctx, c.client, []string{followerCountKey(userID)}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis decr follower count: %w", err)
	}
	return nil
}

// Invalidate drops the cached count for a user.
func (c *FollowCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, followerCountKey(userID)).Err()
}
