package psi

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
)

// maxFrameSize bounds a single helper response line. Setup messages grow
// with the server set, so the bound is generous.
const maxFrameSize = 64 << 20

// helperRequest is one frame sent to the helper process.
type helperRequest struct {
	Op              string   `json:"op"` // "setup" | "process"
	FPR             float64  `json:"fpr,omitempty"`
	NumClientInputs int      `json:"num_client_inputs,omitempty"`
	Items           []string `json:"items,omitempty"`
	RequestHex      string   `json:"request_hex,omitempty"`
}

// helperResponse is one frame received from the helper process.
type helperResponse struct {
	MessageHex string `json:"message_hex,omitempty"`
	Error      string `json:"error,omitempty"`
}

// HelperEngine drives the external PSI engine as a long-lived helper
// process. The helper generates its private key on startup and keeps it for
// its whole lifetime, so all setup/process calls share one key, as the
// handshake requires.
//
// Frames are line-delimited JSON over the helper's stdin/stdout with binary
// message bodies hex-encoded. The pipe admits one exchange at a time; a
// mutex serializes calls, which also covers engines that are not reentrant.
type HelperEngine struct {
	logger *slog.Logger
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Scanner
	mu     sync.Mutex
}

// StartHelper launches the helper binary with the process-lifetime PSI
// configuration and performs no handshake beyond process startup: the first
// engine call will surface a broken helper.
func StartHelper(logger *slog.Logger, command string, cfg Config) (*HelperEngine, error) {
	if command == "" {
		return nil, fmt.Errorf("psi helper command is not configured")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid psi config: %w", err)
	}

	cmd := exec.Command(command,
		"--reveal", string(cfg.Reveal),
		"--container", string(cfg.Container),
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open helper stdin: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open helper stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start psi helper %q: %w", command, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)

	logger.Info("psi helper started",
		slog.String("command", command),
		slog.String("reveal", string(cfg.Reveal)),
		slog.String("container", string(cfg.Container)))

	return &HelperEngine{
		logger: logger,
		cmd:    cmd,
		stdin:  stdin,
		stdout: scanner,
	}, nil
}

// CreateSetupMessage implements Engine.
func (e *HelperEngine) CreateSetupMessage(ctx context.Context, fpr float64, numClientInputs int, items []string) ([]byte, error) {
	return e.roundTrip(ctx, helperRequest{
		Op:              "setup",
		FPR:             fpr,
		NumClientInputs: numClientInputs,
		Items:           items,
	})
}

// ProcessRequest implements Engine.
func (e *HelperEngine) ProcessRequest(ctx context.Context, request []byte) ([]byte, error) {
	return e.roundTrip(ctx, helperRequest{
		Op:         "process",
		RequestHex: hex.EncodeToString(request),
	})
}

// Close shuts the helper down by closing its stdin and waiting for exit.
func (e *HelperEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_ = e.stdin.Close()
	return e.cmd.Wait()
}

// roundTrip writes one request frame and reads one response frame. The
// exchange is serialized: the helper answers frames in order on one pipe.
func (e *HelperEngine) roundTrip(ctx context.Context, req helperRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	frame, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode helper request: %w", err)
	}
	frame = append(frame, '\n')

	if _, err := e.stdin.Write(frame); err != nil {
		return nil, fmt.Errorf("%w: write to helper failed: %v", ErrEngineFailure, err)
	}

	if !e.stdout.Scan() {
		if err := e.stdout.Err(); err != nil {
			return nil, fmt.Errorf("%w: read from helper failed: %v", ErrEngineFailure, err)
		}
		return nil, fmt.Errorf("%w: helper closed its output", ErrEngineFailure)
	}

	var resp helperResponse
	if err := json.Unmarshal(e.stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed helper frame: %v", ErrEngineFailure, err)
	}

	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrEngineFailure, resp.Error)
	}

	message, err := hex.DecodeString(resp.MessageHex)
	if err != nil {
		return nil, fmt.Errorf("%w: helper returned malformed hex: %v", ErrEngineFailure, err)
	}

	return message, nil
}
