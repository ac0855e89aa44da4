package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Token format: st_{session-id}_{secret}
// Example: st_01HV9Z2J8Q4N5R6T7W8X9Y0Z1A_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
//
// The session id is a ULID used for storage lookup; the secret is
// verified against the stored Argon2id hash.
const (
	tokenPrefix    = "st"
	tokenSecretLen = 32 // hex encoded 16 bytes
)

var (
	// ErrInvalidTokenFormat indicates the token format is invalid.
	ErrInvalidTokenFormat = errors.New("invalid session token format")

	tokenFormatRegex = regexp.MustCompile(`^st_([0-9A-HJKMNP-TV-Z]{26})_([a-f0-9]{32})$`)
)

// GeneratedToken contains the parts of a newly issued session token.
type GeneratedToken struct {
	Plaintext string // Full token (returned to the client once)
	SessionID string // ULID used as the storage key
	Secret    string // Secret part, hash before storing
}

// GenerateToken creates a new opaque session token.
func GenerateToken() (*GeneratedToken, error) {
	sessionID := ulid.Make().String()

	secretBytes := make([]byte, tokenSecretLen/2)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	secret := hex.EncodeToString(secretBytes)

	return &GeneratedToken{
		Plaintext: strings.Join([]string{tokenPrefix, sessionID, secret}, "_"),
		SessionID: sessionID,
		Secret:    secret,
	}, nil
}

// ParsedToken is a session token split into its lookup and secret parts.
type ParsedToken struct {
	SessionID string
	Secret    string
}

// ParseToken validates the token format and splits it.
func ParseToken(token string) (*ParsedToken, error) {
	matches := tokenFormatRegex.FindStringSubmatch(token)
	if matches == nil {
		return nil, ErrInvalidTokenFormat
	}
	return &ParsedToken{SessionID: matches[1], Secret: matches[2]}, nil
}
