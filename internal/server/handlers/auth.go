package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/setops/psigate/internal/server/auth"
	"github.com/setops/psigate/internal/validation"
	"github.com/setops/psigate/pkg/api"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	logger  *slog.Logger
	authSvc *auth.Service
}

// NewAuthHandler creates a new handler for authentication endpoints.
func NewAuthHandler(logger *slog.Logger, authSvc *auth.Service) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		authSvc: authSvc,
	}
}

// Login handles POST /api/login.
// Verifies credentials and issues a fresh bearer token with absolute expiry.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		h.logger.WarnContext(ctx, "invalid username", slog.String("username", req.Username), slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	identity, err := h.authSvc.VerifyUser(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.WarnContext(ctx, "login failed", slog.String("username", req.Username))
			sendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to verify user", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	token, err := h.authSvc.IssueToken(ctx, identity.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged in",
		slog.String("username", identity.Username),
		slog.String("user_id", identity.UserID))

	resp := api.LoginResponse{
		Token:  token.Token,
		UserID: identity.UserID,
		Role:   string(identity.Role),
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Logout handles POST /api/logout.
// The token is not revoked server-side; discarding it is the client's job.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentity(r.Context())
	if !ok {
		sendError(h.logger, w, "authentication required", http.StatusUnauthorized)
		return
	}

	h.logger.InfoContext(r.Context(), "user logged out", slog.String("user_id", identity.UserID))

	sendJSON(h.logger, w, api.LogoutResponse{Message: "Logged out successfully"}, http.StatusOK)
}
