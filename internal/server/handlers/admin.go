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

// AdminHandler serves cross-user audit visibility. Admin enforcement lives
// in the middleware chain, not here.
type AdminHandler struct {
	logger *slog.Logger
	audit  storage.AuditStorage
}

// NewAdminHandler creates a new handler for admin-scoped session endpoints.
func NewAdminHandler(logger *slog.Logger, audit storage.AuditStorage) *AdminHandler {
	return &AdminHandler{
		logger: logger,
		audit:  audit,
	}
}

// ListAll handles GET /api/admin/sessions.
// Returns summaries across all users with owner attribution, newest first.
func (h *AdminHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessions, err := h.audit.ListAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list all sessions", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.SessionsResponse{Sessions: sessions}, http.StatusOK)
}

// ListAllDetailed handles GET /api/admin/sessions/detailed.
// Same as ListAll but includes the intersection payloads.
func (h *AdminHandler) ListAllDetailed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessions, err := h.audit.ListAllWithPayload(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list detailed sessions", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.SessionsDetailedResponse{Sessions: sessions}, http.StatusOK)
}

// Get handles GET /api/admin/sessions/{id}.
// Returns any record regardless of ownership, joined with its owner's
// username.
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.audit.GetDetailAsAdmin(ctx, r.PathValue("id"))
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

// Download handles GET /api/admin/sessions/{id}/download.
// Serves any record as a JSON attachment including owner and origin address.
func (h *AdminHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	session, err := h.audit.GetDetailAsAdmin(ctx, r.PathValue("id"))
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
		Username:         session.Username,
		ClientSize:       session.ClientSize,
		IntersectionSize: session.IntersectionSize,
		Intersection:     session.Intersection,
		ClientAddr:       session.ClientAddr,
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=psi_admin_results_%s.json", session.ID))
	sendJSON(h.logger, w, result, http.StatusOK)
}
