package shortlink

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache holds code -> target lookups. Links never change once written,
// so entries only expire.
type Cache interface {
	Get(ctx context.Context, code string) (Target, bool, error)
	Set(ctx context.Context, code string, t Target) error
}

const (
	defaultCacheTTL    = 24 * time.Hour
	defaultCachePrefix = "wall:link:"
)

type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{Client: client, TTL: ttl, Prefix: defaultCachePrefix}
}

func (c *RedisCache) Get(ctx context.Context, code string) (Target, bool, error) {
	val, err := c.Client.Get(ctx, c.Prefix+code).Result()
	if errors.Is(err, redis.Nil) {
		return Target{}, false, nil
	}
	if err != nil {
		return Target{}, false, err
	}
	t, err := ParseTarget(val)
	if err != nil {
		return Target{}, false, err
	}
	return t, true, nil
}

func (c *RedisCache) Set(ctx context.Context, code string, t Target) error {
	return c.Client.Set(ctx, c.Prefix+code, t.String(), c.TTL).Err()
}
