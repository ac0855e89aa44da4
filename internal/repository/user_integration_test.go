package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shelfmark/shelfmark/internal/model"
	"github.com/shelfmark/shelfmark/internal/testutil"
)

func TestRepository_CreateAndGetUser(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	byID, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user by id: %v", err)
	}
	if byID.Email != user.Email || byID.Role != model.RoleUser {
		t.Errorf("loaded user = %+v", byID)
	}

	bySocial, err := repo.GetUserBySocialID(ctx, user.SocialProvider, user.SocialID)
	if err != nil {
		t.Fatalf("get user by social id: %v", err)
	}
	if bySocial.ID != user.ID {
		t.Errorf("social lookup returned %s, want %s", bySocial.ID, user.ID)
	}

	// Same social identity twice is a conflict.
	dup := testutil.NewTestUser(t)
	dup.SocialProvider = user.SocialProvider
	dup.SocialID = user.SocialID
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	if _, err := repo.GetUserByID(ctx, "01J00000000000000000000000"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRepository_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	session := &model.Session{
		ID:         ulid.Make().String(),
		UserID:     user.ID,
		SecretHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		ExpiresAt:  time.Now().UTC().Add(time.Hour),
		CreatedAt:  time.Now().UTC(),
	}
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	loaded, err := repo.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if loaded.UserID != user.ID || loaded.SecretHash != session.SecretHash {
		t.Errorf("loaded session = %+v", loaded)
	}

	if err := repo.DeleteSession(ctx, session.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := repo.GetSession(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := repo.DeleteSession(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("double delete: expected ErrSessionNotFound, got %v", err)
	}
}
