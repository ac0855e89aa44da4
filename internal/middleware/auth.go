package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/cache"
	"github.com/shelfmark/shelfmark/internal/model"
	"github.com/shelfmark/shelfmark/internal/repository"
)

// AuthConfig holds configuration for the session auth middleware.
type AuthConfig struct {
	Logger     *slog.Logger
	Repository *repository.Repository
	Cache      *cache.Cache
}

// Auth returns a middleware that authenticates requests with an opaque
// session token from the Authorization header. The resolved internal
// user id is injected into the request context; handlers pass it
// explicitly into the services.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w)
				return
			}

			parsed, err := auth.ParseToken(token)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "invalid_format")
				writeAuthError(w)
				return
			}

			// Check cache first
			tokenHash := auth.QuickHash(token)
			if cfg.Cache != nil {
				if authCtx, err := cfg.Cache.GetAuthContext(r.Context(), tokenHash); err == nil {
					ctx := auth.ContextWithAuth(r.Context(), authCtx)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			// Cache miss - resolve the session from the database
			session, err := cfg.Repository.GetSession(r.Context(), parsed.SessionID)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "unknown_session")
				writeAuthError(w)
				return
			}
			if session.Expired() {
				logAuthFailure(cfg.Logger, r, "expired_session")
				writeAuthError(w)
				return
			}

			ok, err := auth.VerifySecret(parsed.Secret, session.SecretHash)
			if err != nil || !ok {
				logAuthFailure(cfg.Logger, r, "secret_mismatch")
				writeAuthError(w)
				return
			}

			user, err := cfg.Repository.GetUserByID(r.Context(), session.UserID)
			if err != nil {
				logAuthFailure(cfg.Logger, r, "unknown_user")
				writeAuthError(w)
				return
			}

			authCtx := &model.AuthContext{
				UserID:    user.ID,
				SessionID: session.ID,
				Role:      string(user.Role),
			}

			if cfg.Cache != nil {
				ttl := time.Until(session.ExpiresAt)
				_ = cfg.Cache.SetAuthContext(r.Context(), tokenHash, authCtx, ttl)
			}

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the token from "Authorization: Bearer <token>".
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing session token"}}`))
}
