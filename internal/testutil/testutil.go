// Package testutil provides shared helpers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/shelfmark/shelfmark/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 730731

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// migrationOrder lists the schema migrations oldest first. ResetSchema
// applies the down files in reverse and the up files in order.
var migrationOrder = []string{
	"000001_users",
	"000002_books",
	"000003_shelves",
}

// ResetSchema drops and recreates every table for tests.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	for i := len(migrationOrder) - 1; i >= 0; i-- {
		path := filepath.Join(root, "migrations", migrationOrder[i]+".down.sql")
		sql, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read down migration %s: %w", migrationOrder[i], err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply down migration %s: %w", migrationOrder[i], err)
		}
	}

	for _, name := range migrationOrder {
		path := filepath.Join(root, "migrations", name+".up.sql")
		sql, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read up migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply up migration %s: %w", name, err)
		}
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// NewTestUser creates a user with sensible defaults.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	id := ulid.Make().String()
	return &model.User{
		ID:             id,
		Email:          fmt.Sprintf("%s@example.com", id),
		Nickname:       "reader-" + id[:8],
		SocialProvider: "kakao",
		SocialID:       "social-" + id,
		Role:           model.RoleUser,
		CreatedAt:      time.Now().UTC(),
	}
}

// NewTestBook creates a book with a unique ISBN.
func NewTestBook(t testing.TB) *model.Book {
	t.Helper()
	return &model.Book{
		ISBN:      UniqueISBN(),
		Title:     "The Left Hand of Darkness",
		Authors:   []string{"Ursula K. Le Guin"},
		Publisher: "Ace Books",
		CoverURL:  "https://covers.example.com/left-hand.jpg",
	}
}

// UniqueISBN generates a unique ISBN-shaped string for tests.
func UniqueISBN() string {
	return fmt.Sprintf("978%010d", time.Now().UnixNano()%1e10)
}

// Ptr returns a pointer to v. Handy for optional entry fields.
func Ptr[T any](v T) *T {
	return &v
}
