package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hotelcontrol/staff-auth/internal/core/domain"
	"github.com/hotelcontrol/staff-auth/internal/core/ports"
)

const defaultRoleTTL = 10 * time.Minute

// RoleCache memoises role rows in Redis.
// Key format: role:<role_id>
type RoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.RoleCache = (*RoleCache)(nil)

// NewRoleCache creates a RoleCache wrapping the given Redis client.
// A non-positive ttl falls back to defaultRoleTTL.
func NewRoleCache(client *redis.Client, ttl time.Duration) *RoleCache {
	if ttl <= 0 {
		ttl = defaultRoleTTL
	}
	return &RoleCache{client: client, ttl: ttl}
}

// Get returns the cached role, or (nil, nil) when the key is absent.
func (c *RoleCache) Get(ctx context.Context, id int64) (*domain.Role, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("role cache get: %w", err)
	}

	var role domain.Role
	if err := json.Unmarshal(raw, &role); err != nil {
		return nil, fmt.Errorf("role cache decode: %w", err)
	}
	return &role, nil
}

// Set stores role under its id; the entry expires after the configured TTL.
func (c *RoleCache) Set(ctx context.Context, role *domain.Role) error {
	raw, err := json.Marshal(role)
	if err != nil {
		return fmt.Errorf("role cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(role.ID), raw, c.ttl).Err()
}

func (c *RoleCache) key(id int64) string {
	return fmt.Sprintf("role:%d", id)
}
