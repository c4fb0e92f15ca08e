package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/oggyb/swipematch/internal/config"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by GetJSON when the key is absent.
var ErrMiss = errors.New("cache miss")

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// KeyForLikeCount generates Redis key for how many users liked userID.
func (c *RedisCache) KeyForLikeCount(userID uint64) string {
	return fmt.Sprintf("likes:count:%d", userID)
}

// KeyForDashboard is the admin dashboard snapshot key.
func (c *RedisCache) KeyForDashboard() string {
	return "admin:dashboard"
}

// KeyForLikeCountVersion is bumped on every invalidation of userID's count.
func (c *RedisCache) KeyForLikeCountVersion(userID uint64) string {
	return fmt.Sprintf("likes:count:ver:%d", userID)
}

// LikeCountVersion returns the current invalidation version, 0 when unset.
// Read it before counting in the DB and hand it to SetLikeCount.
func (c *RedisCache) LikeCountVersion(ctx context.Context, userID uint64) (int64, error) {
	v, err := c.Client.Get(ctx, c.KeyForLikeCountVersion(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// SetLikeCount stores the liked-you count unless the count was invalidated
// after version was read. Returns whether the value was written.
func (c *RedisCache) SetLikeCount(ctx context.Context, userID uint64, count, version int64, ttl time.Duration) (bool, error) {
	verKey := c.KeyForLikeCountVersion(userID)
	written := false
	err := c.Client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, c.KeyForLikeCount(userID), count, ttl)
			return nil
		})
		if err == nil {
			written = true
		}
		return err
	}, verKey)
	if errors.Is(err, redis.TxFailedErr) {
		// invalidated while we were writing
		return false, nil
	}
	return written, err
}

// GetLikeCount returns the cached count and whether it was present.
// The TTL is fixed at write time; hits do not extend it.
func (c *RedisCache) GetLikeCount(ctx context.Context, userID uint64) (int64, bool, error) {
	val, err := c.Client.Get(ctx, c.KeyForLikeCount(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// corrupt entry, treat as miss
		return 0, false, nil
	}
	return n, true, nil
}

// InvalidateLikeCount drops the cached count and bumps its version, so a
// reader that counted before this call cannot store its result.
func (c *RedisCache) InvalidateLikeCount(ctx context.Context, userID uint64) error {
	_, err := c.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, c.KeyForLikeCountVersion(userID))
		p.Del(ctx, c.KeyForLikeCount(userID))
		return nil
	})
	return err
}

// SetJSON stores v encoded as JSON.
func (c *RedisCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return c.Client.Set(ctx, key, b, ttl).Err()
}

// GetJSON decodes the value at key into v. Returns ErrMiss when absent.
func (c *RedisCache) GetJSON(ctx context.Context, key string, v any) error {
	b, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	} else if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}
