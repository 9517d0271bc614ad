package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/setops/psigate/pkg/api"
)

// sendJSON writes a JSON response with the given status.
func sendJSON(logger *slog.Logger, w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// sendError writes a JSON error response with the given status.
func sendError(logger *slog.Logger, w http.ResponseWriter, message string, status int) {
	sendJSON(logger, w, api.ErrorResponse{Error: message}, status)
}
