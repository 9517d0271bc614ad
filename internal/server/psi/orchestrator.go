package psi

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// Orchestrator owns the handshake contract with the PSI engine: it supplies
// the configured false-positive rate and the immutable server item set on
// setup, and shuttles opaque request/response blobs through the engine on
// process. Both phases are stateless per call; the only state is the
// process-lifetime configuration and the shared engine instance.
type Orchestrator struct {
	logger *slog.Logger
	engine Engine
	cfg    Config
	items  []string
}

// NewOrchestrator wires the single shared engine instance to the loaded
// server item set.
func NewOrchestrator(logger *slog.Logger, engine Engine, cfg Config, items []string) *Orchestrator {
	return &Orchestrator{
		logger: logger,
		engine: engine,
		cfg:    cfg,
		items:  items,
	}
}

// ItemCount returns the size of the server item set.
func (o *Orchestrator) ItemCount() int {
	return len(o.items)
}

// Setup generates a setup message for a client declaring numClientInputs
// items and returns it hex-encoded. fpr overrides the configured
// false-positive rate when positive. Safe to call repeatedly and
// concurrently.
func (o *Orchestrator) Setup(ctx context.Context, numClientInputs int, fpr float64) (string, error) {
	if numClientInputs < 0 {
		return "", fmt.Errorf("num_client_inputs must be non-negative, got %d", numClientInputs)
	}
	if fpr <= 0 {
		fpr = o.cfg.FalsePositiveRate
	}

	message, err := o.engine.CreateSetupMessage(ctx, fpr, numClientInputs, o.items)
	if err != nil {
		return "", err
	}

	o.logger.InfoContext(ctx, "setup message generated",
		slog.Int("num_client_inputs", numClientInputs),
		slog.Int("server_items", len(o.items)),
		slog.Int("message_bytes", len(message)))

	return hex.EncodeToString(message), nil
}

// Process decodes a hex-encoded client request, forwards it to the engine
// and re-encodes the opaque response. The request's internal structure is
// never inspected here; malformed content is the engine's failure to signal.
func (o *Orchestrator) Process(ctx context.Context, requestHex string) (string, error) {
	request, err := hex.DecodeString(requestHex)
	if err != nil {
		return "", fmt.Errorf("malformed hex request: %w", err)
	}

	response, err := o.engine.ProcessRequest(ctx, request)
	if err != nil {
		return "", err
	}

	o.logger.InfoContext(ctx, "request processed",
		slog.Int("request_bytes", len(request)),
		slog.Int("response_bytes", len(response)))

	return hex.EncodeToString(response), nil
}
