package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/setops/psigate/internal/server/storage"
	"github.com/setops/psigate/pkg/api"
)

// SessionsHandler serves a user's own PSI session records.
// Ownership is enforced by the storage layer: a foreign record is
// indistinguishable from a missing one.
type SessionsHandler struct {
	logger *slog.Logger
	audit  storage.AuditStorage
}

// NewSessionsHandler creates a new handler for ownership-scoped session
// endpoints.
func NewSessionsHandler(logger *slog.Logger, audit storage.AuditStorage) *SessionsHandler {
	return &SessionsHandler{
		logger: logger,
		audit:  audit,
	}
}

// List handles GET /api/sessions.
// Returns the caller's session summaries, newest first, without payloads.
func (h *SessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := GetIdentity(ctx)
	if !ok {
		sendError(h.logger, w, "authentication required", http.StatusUnauthorized)
		return
	}

	sessions, err := h.audit.ListForUser(ctx, identity.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list sessions", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.SessionsResponse{Sessions: sessions}, http.StatusOK)
}

// Get handles GET /api/sessions/{id}.
// Returns the full record including payload if the caller owns it.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := GetIdentity(ctx)
	if !ok {
		sendError(h.logger, w, "authentication required", http.StatusUnauthorized)
		return
	}

	session, err := h.audit.GetDetail(ctx, r.PathValue("id"), identity.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			sendError(h.logger, w, "session not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get session", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, session, http.StatusOK)
}

// Download handles GET /api/sessions/{id}/download.
// Serves the caller's own record as a JSON attachment.
func (h *SessionsHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := GetIdentity(ctx)
	if !ok {
		sendError(h.logger, w, "authentication required", http.StatusUnauthorized)
		return
	}

	session, err := h.audit.GetDetail(ctx, r.PathValue("id"), identity.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			sendError(h.logger, w, "session not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get session", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	result := api.SessionDownload{
		SessionID:        session.ID,
		Timestamp:        session.CreatedAt.Format(time.RFC3339),
		ClientSize:       session.ClientSize,
		IntersectionSize: session.IntersectionSize,
		Intersection:     session.Intersection,
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=psi_results_%s.json", session.ID))
	sendJSON(h.logger, w, result, http.StatusOK)
}
