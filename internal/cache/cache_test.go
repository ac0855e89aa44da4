package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shelfmark/shelfmark/internal/model"
	"github.com/shelfmark/shelfmark/internal/testutil"
)

func TestSearchKey_Deterministic(t *testing.T) {
	t.Parallel()

	key1 := SearchKey("le guin", 1, 10)
	key2 := SearchKey("le guin", 1, 10)
	if key1 != key2 {
		t.Error("same query should produce same key")
	}
}

func TestSearchKey_Distinct(t *testing.T) {
	t.Parallel()

	base := SearchKey("le guin", 1, 10)
	tests := []struct {
		name string
		key  string
	}{
		{"different query", SearchKey("borges", 1, 10)},
		{"different page", SearchKey("le guin", 2, 10)},
		{"different size", SearchKey("le guin", 1, 20)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.key == base {
				t.Errorf("key collides with base: %s", tt.key)
			}
		})
	}
}

func newTestCache(t *testing.T, ctx context.Context) *Cache {
	t.Helper()

	redisURL := testutil.RequireEnv(t, "REDIS_URL")
	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close()
	})

	if err := testutil.FlushRedis(ctx, c.client); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return c
}

func TestCache_AuthContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, ctx)

	authCtx := &model.AuthContext{
		UserID:    "01J5TESTUSER00000000000000",
		SessionID: "01J5TESTSESSION00000000000",
		Role:      string(model.RoleUser),
	}

	if _, err := c.GetAuthContext(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := c.SetAuthContext(ctx, "tokenhash", authCtx, time.Minute); err != nil {
		t.Fatalf("set auth context: %v", err)
	}

	loaded, err := c.GetAuthContext(ctx, "tokenhash")
	if err != nil {
		t.Fatalf("get auth context: %v", err)
	}
	if loaded.UserID != authCtx.UserID || loaded.SessionID != authCtx.SessionID {
		t.Errorf("loaded = %+v, want %+v", loaded, authCtx)
	}

	if err := c.DeleteAuthContext(ctx, "tokenhash"); err != nil {
		t.Fatalf("delete auth context: %v", err)
	}
	if _, err := c.GetAuthContext(ctx, "tokenhash"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestCache_SearchPageRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, ctx)

	key := SearchKey("dune", 1, 10)
	payload := []byte(`{"books":[],"total":0,"page":1,"size":10}`)

	if _, err := c.GetSearchPage(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	if err := c.SetSearchPage(ctx, key, payload, time.Minute); err != nil {
		t.Fatalf("set search page: %v", err)
	}

	loaded, err := c.GetSearchPage(ctx, key)
	if err != nil {
		t.Fatalf("get search page: %v", err)
	}
	if string(loaded) != string(payload) {
		t.Errorf("loaded = %s, want %s", loaded, payload)
	}
}
