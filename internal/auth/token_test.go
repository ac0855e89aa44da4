package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestGenerateAndParseToken(t *testing.T) {
	gen, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if !strings.HasPrefix(gen.Plaintext, "st_") {
		t.Errorf("token %q missing st_ prefix", gen.Plaintext)
	}

	parsed, err := ParseToken(gen.Plaintext)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if parsed.SessionID != gen.SessionID {
		t.Errorf("session id = %q, want %q", parsed.SessionID, gen.SessionID)
	}
	if parsed.Secret != gen.Secret {
		t.Errorf("secret = %q, want %q", parsed.Secret, gen.Secret)
	}
}

func TestParseTokenRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"wrong_prefix", "pk_01HV9Z2J8Q4N5R6T7W8X9Y0Z1A_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b"},
		{"short_secret", "st_01HV9Z2J8Q4N5R6T7W8X9Y0Z1A_4f8d"},
		{"bad_ulid", "st_notaulid_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b"},
		{"garbage", "hello world"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := ParseToken(test.token); !errors.Is(err, ErrInvalidTokenFormat) {
				t.Fatalf("expected ErrInvalidTokenFormat, got %v", err)
			}
		})
	}
}

func TestHashAndVerifySecret(t *testing.T) {
	hash, err := HashSecret("super-secret")
	if err != nil {
		t.Fatalf("HashSecret: %v", err)
	}

	ok, err := VerifySecret("super-secret", hash)
	if err != nil {
		t.Fatalf("VerifySecret: %v", err)
	}
	if !ok {
		t.Error("correct secret did not verify")
	}

	ok, err = VerifySecret("wrong-secret", hash)
	if err != nil {
		t.Fatalf("VerifySecret: %v", err)
	}
	if ok {
		t.Error("wrong secret verified")
	}
}

func TestVerifySecretRejectsBadHash(t *testing.T) {
	if _, err := VerifySecret("x", "not-a-phc-string"); !errors.Is(err, ErrInvalidHash) {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}
