package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shelfmark/shelfmark/internal/auth"
)

const (
	searchKeyPrefix = "search:"

	// DefaultSearchTTL is the TTL for cached catalog search pages.
	DefaultSearchTTL = 15 * time.Minute
)

// SearchKey derives the cache key for one catalog result page. The
// query text is hashed so arbitrary user input never lands in a key.
func SearchKey(query string, page, size int) string {
	return fmt.Sprintf("%s%s:%d:%d", searchKeyPrefix, auth.QuickHash(query), page, size)
}

// GetSearchPage retrieves a cached search result payload. The catalog
// package owns the encoding; the cache stores opaque bytes.
func (c *Cache) GetSearchPage(ctx context.Context, key string) ([]byte, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return payload, nil
}

// SetSearchPage caches a search result payload.
func (c *Cache) SetSearchPage(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultSearchTTL
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
