package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atims0208/fieldhouse/internal/domain"
)

const profileKeyPrefix = "user:profile:"

// ProfileCache caches public profile views in Redis keyed by username.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProfileCache creates a Redis-backed public profile cache.
func NewProfileCache(client *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{client: client, ttl: ttl}
}

func profileKey(username string) string {
	return profileKeyPrefix + username
}

// Get returns the cached public profile for a username.
// Returns (profile, true, nil) on hit, (nil, false, nil) on miss.
func (c *ProfileCache) Get(ctx context.Context, username string) (*domain.UserResponse, bool, error) {
	raw, err := c.client.Get(ctx, profileKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get profile: %w", err)
	}

	var profile domain.UserResponse
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, false, fmt.Errorf("decode cached profile: %w", err)
	}
	return &profile, true, nil
}

// Set stores the public profile for a username.
func (c *ProfileCache) Set(ctx context.Context, username string, profile *domain.UserResponse) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := c.client.Set(ctx, profileKey(username), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set profile: %w", err)
	}
	return nil
}

// Invalidate drops the cached profile for a username.
func (c *ProfileCache) Invalidate(ctx context.Context, username string) error {
	return c.client.Del(ctx, profileKey(username)).Err()
}
