// Package cache provides the Redis caching layer. Cache failures are
// always tolerated: callers treat a miss and an error the same way and
// fall through to the source of truth.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates the key was not in the cache.
var ErrCacheMiss = errors.New("cache miss")

// Cache wraps a Redis client.
type Cache struct {
	client *redis.Client
}

// New creates a new Cache connected to the given Redis URL.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
