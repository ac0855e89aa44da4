// Package model defines domain entities for the application.
package model

import "time"

// Role determines what a user is allowed to administer.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is a known value.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a locally provisioned account backed by an
// external OAuth2 identity. Created on first login; repeat logins
// return the stored record unchanged.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Nickname       string    `json:"nickname"`
	SocialProvider string    `json:"social_provider"`
	SocialID       string    `json:"-"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// Session represents an issued opaque session token at rest.
// Only the Argon2id hash of the token secret is stored.
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	SecretHash string    `json:"-"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// AuthContext carries the resolved caller identity through a request.
type AuthContext struct {
	UserID    string `json:"user_id" redis:"user_id"`
	SessionID string `json:"session_id" redis:"session_id"`
	Role      string `json:"role" redis:"role"`
}
