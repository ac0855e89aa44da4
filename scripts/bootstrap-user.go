package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/model"
	"github.com/shelfmark/shelfmark/internal/repository"
)

type output struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Nickname  string `json:"nickname"`
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "reader@shelfmark.local", "User email")
		nickname    = flag.String("nickname", "bootstrap", "User nickname")
		provider    = flag.String("provider", "local", "Social provider")
		socialID    = flag.String("social-id", "bootstrap", "Social identity within the provider")
		ttl         = flag.Duration("ttl", 720*time.Hour, "Session lifetime")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user, err := ensureUser(ctx, repo, *provider, *socialID, *email, *nickname)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	generated, err := auth.GenerateToken()
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate token:", err)
		os.Exit(1)
	}

	secretHash, err := auth.HashSecret(generated.Secret)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash secret:", err)
		os.Exit(1)
	}

	session := &model.Session{
		ID:         generated.SessionID,
		UserID:     user.ID,
		SecretHash: secretHash,
		ExpiresAt:  time.Now().UTC().Add(*ttl),
		CreatedAt:  time.Now().UTC(),
	}

	if err := repo.CreateSession(ctx, session); err != nil {
		fmt.Fprintln(os.Stderr, "create session:", err)
		os.Exit(1)
	}

	out := output{
		UserID:    user.ID,
		Email:     user.Email,
		Nickname:  user.Nickname,
		SessionID: session.ID,
		Token:     generated.Plaintext,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func ensureUser(ctx context.Context, repo *repository.Repository, provider, socialID, email, nickname string) (*model.User, error) {
	existing, err := repo.GetUserBySocialID(ctx, provider, socialID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	user := &model.User{
		ID:             ulid.Make().String(),
		Email:          email,
		Nickname:       nickname,
		SocialProvider: provider,
		SocialID:       socialID,
		Role:           model.RoleUser,
		CreatedAt:      time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
