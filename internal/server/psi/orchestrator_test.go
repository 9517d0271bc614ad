package psi

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEngine records calls and replays canned responses.
type stubEngine struct {
	setupMessage []byte
	response     []byte
	err          error

	gotFPR    float64
	gotCount  int
	gotItems  []string
	gotInput  []byte
	processed int
}

func (s *stubEngine) CreateSetupMessage(_ context.Context, fpr float64, numClientInputs int, items []string) ([]byte, error) {
	s.gotFPR = fpr
	s.gotCount = numClientInputs
	s.gotItems = items
	return s.setupMessage, s.err
}

func (s *stubEngine) ProcessRequest(_ context.Context, request []byte) ([]byte, error) {
	s.gotInput = request
	s.processed++
	return s.response, s.err
}

func (s *stubEngine) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig() Config {
	return Config{Reveal: RevealElements, Container: ContainerRaw, FalsePositiveRate: 1e-9}
}

func TestOrchestrator_Setup(t *testing.T) {
	ctx := context.Background()
	engine := &stubEngine{setupMessage: []byte{0x01, 0x02, 0xff}}
	items := []string{"a", "b", "c"}

	o := NewOrchestrator(testLogger(), engine, testConfig(), items)

	got, err := o.Setup(ctx, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, "0102ff", got)

	// The configured fpr and the full immutable server set reach the engine
	assert.Equal(t, 1e-9, engine.gotFPR)
	assert.Equal(t, 3, engine.gotCount)
	assert.Equal(t, items, engine.gotItems)
}

func TestOrchestrator_Setup_FPROverride(t *testing.T) {
	ctx := context.Background()
	engine := &stubEngine{setupMessage: []byte{0x00}}

	o := NewOrchestrator(testLogger(), engine, testConfig(), []string{"a"})

	_, err := o.Setup(ctx, 1, 0.001)
	require.NoError(t, err)
	assert.Equal(t, 0.001, engine.gotFPR)
}

func TestOrchestrator_Setup_NegativeCount(t *testing.T) {
	ctx := context.Background()
	o := NewOrchestrator(testLogger(), &stubEngine{}, testConfig(), nil)

	_, err := o.Setup(ctx, -1, 0)
	assert.Error(t, err)
}

func TestOrchestrator_Process(t *testing.T) {
	ctx := context.Background()
	engine := &stubEngine{response: []byte{0xca, 0xfe}}

	o := NewOrchestrator(testLogger(), engine, testConfig(), nil)

	got, err := o.Process(ctx, hex.EncodeToString([]byte{0xde, 0xad}))
	require.NoError(t, err)
	assert.Equal(t, "cafe", got)
	// The request buffer is passed through untouched
	assert.Equal(t, []byte{0xde, 0xad}, engine.gotInput)
}

func TestOrchestrator_Process_MalformedHex(t *testing.T) {
	ctx := context.Background()
	engine := &stubEngine{}

	o := NewOrchestrator(testLogger(), engine, testConfig(), nil)

	_, err := o.Process(ctx, "not hex at all")
	assert.Error(t, err)
	// The engine is never reached for malformed wire input
	assert.Zero(t, engine.processed)
}

func TestOrchestrator_EngineFailurePropagates(t *testing.T) {
	ctx := context.Background()
	engine := &stubEngine{err: ErrEngineFailure}

	o := NewOrchestrator(testLogger(), engine, testConfig(), nil)

	_, err := o.Setup(ctx, 1, 0)
	assert.ErrorIs(t, err, ErrEngineFailure)

	_, err = o.Process(ctx, "00")
	assert.ErrorIs(t, err, ErrEngineFailure)
	// No retry: the engine saw the request exactly once
	assert.Equal(t, 1, engine.processed)
}

func TestErrEngineFailureIsDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrEngineFailure, context.Canceled))
}
