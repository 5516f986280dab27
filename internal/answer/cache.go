package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "answer:version"

// Cache stores rendered answers in Redis under a versioned key. Bumping the
// version on a dataset reload invalidates every cached answer at once
// without scanning keys. A nil client degrades to pass-through.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps a Redis client with answer caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising it when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Key composes a versioned cache key from the request identity parts.
func (c *Cache) Key(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("answer:%s:%d", joined, ver), nil
}

// Fetch returns the cached answer for key, or renders and stores it via the
// loader on a miss.
func (c *Cache) Fetch(ctx context.Context, key string, loader func() (string, error)) (string, error) {
	if loader == nil {
		return "", errors.New("answer: cache loader required")
	}
	if c == nil || c.client == nil {
		return loader()
	}
	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return cached, nil
	}
	if err != redis.Nil {
		return "", err
	}
	rendered, err := loader()
	if err != nil {
		return "", err
	}
	if err := c.client.Set(ctx, key, rendered, c.ttl).Err(); err != nil {
		return "", err
	}
	return rendered, nil
}

// Bump invalidates all cached answers by incrementing the version.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}
