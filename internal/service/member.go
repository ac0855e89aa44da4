package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/cache"
	"github.com/shelfmark/shelfmark/internal/model"
	"github.com/shelfmark/shelfmark/internal/repository"
)

// Member service errors.
var (
	ErrMissingSocialID = errors.New("social provider and id are required")
	ErrSessionNotFound = errors.New("session not found")
)

// MemberService provisions local users for external OAuth2 identities
// and issues session tokens. The actual token exchange with the
// identity provider happens upstream; by the time input reaches this
// service the attributes are verified.
type MemberService struct {
	repo       *repository.Repository
	cache      *cache.Cache
	sessionTTL time.Duration
}

// NewMemberService creates a new MemberService. cache may be nil, in
// which case sessions are resolved from the database on every request.
func NewMemberService(repo *repository.Repository, c *cache.Cache, sessionTTL time.Duration) *MemberService {
	return &MemberService{repo: repo, cache: c, sessionTTL: sessionTTL}
}

// ProvisionInput carries the verified attributes of a social identity.
type ProvisionInput struct {
	Provider string
	SocialID string
	Email    string
	Nickname string
}

// Provision upserts the local user for a social identity. First login
// creates the user; later logins return the stored record unchanged,
// with no attribute refresh. Idempotent under concurrent first logins:
// the loser of the unique-constraint race re-reads the winner's row.
func (s *MemberService) Provision(ctx context.Context, input ProvisionInput) (*model.User, error) {
	if strings.TrimSpace(input.Provider) == "" || strings.TrimSpace(input.SocialID) == "" {
		return nil, ErrMissingSocialID
	}

	user, err := s.repo.GetUserBySocialID(ctx, input.Provider, input.SocialID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	user = &model.User{
		ID:             ulid.Make().String(),
		Email:          input.Email,
		Nickname:       input.Nickname,
		SocialProvider: input.Provider,
		SocialID:       input.SocialID,
		Role:           model.RoleUser,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return s.repo.GetUserBySocialID(ctx, input.Provider, input.SocialID)
		}
		return nil, err
	}

	return user, nil
}

// Login provisions the user and issues an opaque session token. The
// plaintext token is returned once; only its Argon2id hash is stored.
func (s *MemberService) Login(ctx context.Context, input ProvisionInput) (*model.User, string, error) {
	user, err := s.Provision(ctx, input)
	if err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate session token: %w", err)
	}

	hash, err := auth.HashSecret(token.Secret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash session secret: %w", err)
	}

	now := time.Now().UTC()
	session := &model.Session{
		ID:         token.SessionID,
		UserID:     user.ID,
		SecretHash: hash,
		ExpiresAt:  now.Add(s.sessionTTL),
		CreatedAt:  now,
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, "", err
	}

	// Write-through so the first authenticated request skips Postgres.
	if s.cache != nil {
		authCtx := &model.AuthContext{
			UserID:    user.ID,
			SessionID: session.ID,
			Role:      string(user.Role),
		}
		_ = s.cache.SetAuthContext(ctx, auth.QuickHash(token.Plaintext), authCtx, s.sessionTTL)
	}

	return user, token.Plaintext, nil
}

// Logout invalidates a session and drops its cached auth context.
// tokenHash is the quick hash of the presented plaintext token.
func (s *MemberService) Logout(ctx context.Context, sessionID, tokenHash string) error {
	if s.cache != nil && tokenHash != "" {
		_ = s.cache.DeleteAuthContext(ctx, tokenHash)
	}

	if err := s.repo.DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}
