package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/shelfmark/shelfmark/internal/model"
)

const (
	authKeyPrefix = "auth:"

	// MaxAuthContextTTL caps how long a resolved auth context may be
	// served from cache before the session row is consulted again.
	MaxAuthContextTTL = time.Hour
)

// GetAuthContext retrieves a cached auth context by token hash.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetAuthContext(ctx context.Context, tokenHash string) (*model.AuthContext, error) {
	key := authKeyPrefix + tokenHash

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 || result["user_id"] == "" {
		return nil, ErrCacheMiss
	}

	return &model.AuthContext{
		UserID:    result["user_id"],
		SessionID: result["session_id"],
		Role:      result["role"],
	}, nil
}

// SetAuthContext caches a resolved auth context under the token hash.
// The TTL never exceeds MaxAuthContextTTL.
func (c *Cache) SetAuthContext(ctx context.Context, tokenHash string, authCtx *model.AuthContext, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if ttl > MaxAuthContextTTL {
		ttl = MaxAuthContextTTL
	}

	key := authKeyPrefix + tokenHash

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key,
		"user_id", authCtx.UserID,
		"session_id", authCtx.SessionID,
		"role", authCtx.Role,
	)
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}

// DeleteAuthContext drops a cached auth context, used on logout.
func (c *Cache) DeleteAuthContext(ctx context.Context, tokenHash string) error {
	return c.client.Del(ctx, authKeyPrefix+tokenHash).Err()
}
