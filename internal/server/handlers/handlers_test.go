package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/setops/psigate/internal/models"
	"github.com/setops/psigate/internal/server/auth"
	"github.com/setops/psigate/internal/server/psi"
	"github.com/setops/psigate/internal/server/storage/sqlite"
)

// testEnv bundles the real in-memory storage with the auth service.
type testEnv struct {
	store   *sqlite.Storage
	authSvc *auth.Service
	logger  *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	ctx := context.Background()

	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	return &testEnv{
		store:   store,
		authSvc: auth.NewService(logger, store, store, auth.DefaultTokenTTL),
		logger:  logger,
	}
}

func (e *testEnv) createUser(t *testing.T, username string, role models.Role) *models.User {
	user, err := e.authSvc.CreateUser(context.Background(), username, "test secret", role)
	require.NoError(t, err)
	return user
}

// withIdentity attaches a resolved identity to the request, standing in for
// the auth middleware.
func withIdentity(r *http.Request, user *models.User) *http.Request {
	identity := &models.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}
	return r.WithContext(WithIdentity(r.Context(), identity, "test-token"))
}

// fakeEngine is a canned psi.Engine for handler tests.
type fakeEngine struct {
	message []byte
	err     error
}

func (f *fakeEngine) CreateSetupMessage(context.Context, float64, int, []string) ([]byte, error) {
	return f.message, f.err
}

func (f *fakeEngine) ProcessRequest(context.Context, []byte) ([]byte, error) {
	return f.message, f.err
}

func (f *fakeEngine) Close() error { return nil }

func newTestOrchestrator(logger *slog.Logger, engine psi.Engine, items []string) *psi.Orchestrator {
	cfg := psi.Config{
		Reveal:            psi.RevealElements,
		Container:         psi.ContainerRaw,
		FalsePositiveRate: 1e-9,
	}
	return psi.NewOrchestrator(logger, engine, cfg, items)
}
