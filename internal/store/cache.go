package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kavya-apps/userhub/internal/models"
)

// UserCacheTTL bounds how stale the public profile read may be.
const UserCacheTTL = time.Minute

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// UserCache is a read-through cache in front of the public get-user-by-id
// lookup. Entries are invalidated on profile update and delete.
type UserCache struct {
	rdb *redis.Client
}

func NewUserCache(rdb *redis.Client) *UserCache {
	return &UserCache{rdb: rdb}
}

// Get returns the cached user, or nil on a miss.
func (c *UserCache) Get(ctx context.Context, id string) (*models.User, error) {
	raw, err := c.rdb.Get(ctx, "user:"+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *UserCache) Set(ctx context.Context, u *models.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, "user:"+u.ID.Hex(), raw, UserCacheTTL).Err()
}

func (c *UserCache) Invalidate(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, "user:"+id).Err()
}
