package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/handler/dto"
	"github.com/shelfmark/shelfmark/internal/service"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	members *service.MemberService
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(members *service.MemberService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{members: members, logger: logger}
}

// Login handles POST /api/v1/auth/login. It provisions the local user
// for the given social identity and issues a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.Validate(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	user, token, err := h.members.Login(r.Context(), service.ProvisionInput{
		Provider: req.Provider,
		SocialID: req.SocialID,
		Email:    req.Email,
		Nickname: req.Nickname,
	})
	if err != nil {
		if errors.Is(err, service.ErrMissingSocialID) {
			writeError(w, http.StatusBadRequest, "MISSING_SOCIAL_ID", "Provider and social id are required")
			return
		}
		h.logger.Error("login failed", "error", err, "provider", req.Provider)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	h.logger.Info("user_logged_in", "user_id", user.ID, "provider", req.Provider)
	writeJSON(w, http.StatusOK, dto.LoginResponse{Token: token, User: user})
}

// Logout handles POST /api/v1/auth/logout. It revokes the session the
// bearer token refers to and evicts the cached auth context.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var tokenHash string
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		tokenHash = auth.QuickHash(strings.TrimPrefix(header, "Bearer "))
	}

	if err := h.members.Logout(r.Context(), authCtx.SessionID, tokenHash); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.logger.Error("logout failed", "error", err, "session_id", authCtx.SessionID)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
