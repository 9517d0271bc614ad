package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/setops/psigate/internal/models"
	"github.com/setops/psigate/internal/server/psi"
	"github.com/setops/psigate/internal/server/storage"
	"github.com/setops/psigate/pkg/api"
)

// PSIHandler exposes the PSI handshake and the result-report path.
type PSIHandler struct {
	logger *slog.Logger
	orch   *psi.Orchestrator
	audit  storage.AuditStorage
}

// NewPSIHandler creates a new handler for the PSI endpoints.
func NewPSIHandler(logger *slog.Logger, orch *psi.Orchestrator, audit storage.AuditStorage) *PSIHandler {
	return &PSIHandler{
		logger: logger,
		orch:   orch,
		audit:  audit,
	}
}

// Setup handles GET /setup?num_client_inputs=N[&fpr=F].
// Returns the hex-encoded opaque setup message as plain text. Public and
// stateless per call.
func (h *PSIHandler) Setup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := strconv.Atoi(r.URL.Query().Get("num_client_inputs"))
	if err != nil {
		sendError(h.logger, w, "num_client_inputs must be an integer", http.StatusBadRequest)
		return
	}

	var fpr float64
	if v := r.URL.Query().Get("fpr"); v != "" {
		fpr, err = strconv.ParseFloat(v, 64)
		if err != nil {
			sendError(h.logger, w, "fpr must be a float", http.StatusBadRequest)
			return
		}
	}

	setupHex, err := h.orch.Setup(ctx, count, fpr)
	if err != nil {
		h.writePSIError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(setupHex))
}

// Process handles POST /process with body {"request_hex": "..."}.
// Forwards the opaque request blob to the engine and returns the hex-encoded
// response as plain text.
func (h *PSIHandler) Process(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode process request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	responseHex, err := h.orch.Process(ctx, req.RequestHex)
	if err != nil {
		h.writePSIError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(responseHex))
}

// ReportResult handles POST /api/psi/results.
// Persists a client-declared intersection result at face value, flagged as
// client-reported. A malformed intersection list degrades to an empty
// payload rather than failing the request.
func (h *PSIHandler) ReportResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := GetIdentity(ctx)
	if !ok {
		sendError(h.logger, w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req api.ReportResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode report request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	var intersection []string
	if err := json.Unmarshal([]byte(req.IntersectionData), &intersection); err != nil {
		h.logger.WarnContext(ctx, "malformed intersection data, storing empty payload",
			slog.String("user_id", identity.UserID))
		intersection = []string{}
	}

	token, _ := GetToken(ctx)

	record := &models.Computation{
		ID:               uuid.New().String(),
		UserID:           identity.UserID,
		Token:            token,
		ClientSize:       req.ClientSize,
		IntersectionSize: req.IntersectionSize,
		Intersection:     intersection,
		ClientAddr:       ClientAddr(r),
		Provenance:       models.ProvenanceReported,
		CreatedAt:        time.Now(),
	}

	id, err := h.audit.RecordComputation(ctx, record)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to record computation", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "psi result recorded",
		slog.String("session_id", id),
		slog.String("user_id", identity.UserID),
		slog.Int("client_size", req.ClientSize),
		slog.Int("intersection_size", req.IntersectionSize))

	resp := api.ReportResultResponse{
		SessionID: id,
		Message:   "Results logged successfully",
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// writePSIError maps orchestration failures: opaque engine rejections are a
// bad gateway, everything else is the caller's malformed input.
func (h *PSIHandler) writePSIError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	if errors.Is(err, psi.ErrEngineFailure) {
		h.logger.ErrorContext(ctx, "psi engine failure", slog.Any("error", err))
		sendError(h.logger, w, "psi engine failure", http.StatusBadGateway)
		return
	}

	h.logger.WarnContext(ctx, "invalid psi request", slog.Any("error", err))
	sendError(h.logger, w, err.Error(), http.StatusBadRequest)
}
