package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/notekeeper/notes-api/internal/core/ports"
)

const (
	defaultProfileTTL = 5 * time.Minute

	// tombstone marks a profile as stale. It outlives any read that started
	// before the invalidation, so a late Set cannot resurrect old data.
	tombstone = "-"
)

// ProfileCache keeps the user projection served by the current-session
// endpoint. Key format: profile:<user_id>
//
// Entries are only written into an empty key and invalidation replaces the
// entry with a tombstone for one TTL. A reader that loaded the user before a
// concurrent update or deletion therefore cannot overwrite the invalidation.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProfileCache wraps client; entries expire after ttl (five minutes when ttl <= 0).
func NewProfileCache(client *redis.Client, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = defaultProfileTTL
	}
	return &ProfileCache{client: client, ttl: ttl}
}

// Get returns the cached profile and whether it was present. A tombstone
// counts as absent.
func (c *ProfileCache) Get(ctx context.Context, userID string) (*ports.UserProfile, bool, error) {
	raw, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("profile cache get: %w", err)
	}
	if string(raw) == tombstone {
		return nil, false, nil
	}

	var p ports.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false, fmt.Errorf("profile cache decode: %w", err)
	}
	return &p, true, nil
}

// Set stores profile unless the key already holds an entry or a tombstone.
func (c *ProfileCache) Set(ctx context.Context, profile *ports.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("profile cache encode: %w", err)
	}
	if err := c.client.SetNX(ctx, c.key(profile.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("profile cache set: %w", err)
	}
	return nil
}

// Invalidate replaces any cached profile with a tombstone.
func (c *ProfileCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Set(ctx, c.key(userID), tombstone, c.ttl).Err(); err != nil {
		return fmt.Errorf("profile cache invalidate: %w", err)
	}
	return nil
}

func (c *ProfileCache) key(userID string) string {
	return "profile:" + userID
}
