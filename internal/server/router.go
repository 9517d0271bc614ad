// Package server assembles the HTTP surface: routes, middleware chains and
// the handler set.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/setops/psigate/internal/server/auth"
	"github.com/setops/psigate/internal/server/handlers"
	"github.com/setops/psigate/internal/server/middleware"
	"github.com/setops/psigate/internal/server/psi"
	"github.com/setops/psigate/internal/server/storage"
)

// Options carries the collaborators and tuning knobs the router needs.
type Options struct {
	Logger       *slog.Logger
	AuthService  *auth.Service
	Orchestrator *psi.Orchestrator
	Audit        storage.AuditStorage

	// Login rate limiting; disabled when LoginRateLimit <= 0
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// NewRouter builds the route table.
//
// The PSI handshake endpoints (/setup, /process) are public: the PSI
// counterpart authenticates nothing at the protocol level. Everything under
// /api except login requires a bearer token, and /api/admin additionally
// requires the admin role.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger

	authHandler := handlers.NewAuthHandler(logger, opts.AuthService)
	psiHandler := handlers.NewPSIHandler(logger, opts.Orchestrator, opts.Audit)
	sessionsHandler := handlers.NewSessionsHandler(logger, opts.Audit)
	adminHandler := handlers.NewAdminHandler(logger, opts.Audit)
	healthHandler := handlers.NewHealthHandler(logger)

	requireAuth := middleware.Auth(logger, opts.AuthService)
	requireAdmin := func(next http.Handler) http.Handler {
		return requireAuth(middleware.RequireAdmin(logger)(next))
	}

	login := http.Handler(http.HandlerFunc(authHandler.Login))
	if opts.LoginRateLimit > 0 {
		login = middleware.RateLimit(opts.LoginRateLimit, opts.LoginRateWindow, logger)(login)
	}

	mux := http.NewServeMux()

	// Public surface
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /setup", psiHandler.Setup)
	mux.HandleFunc("POST /process", psiHandler.Process)
	mux.Handle("POST /api/login", login)

	// Authenticated surface
	mux.Handle("POST /api/logout", requireAuth(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("POST /api/psi/results", requireAuth(http.HandlerFunc(psiHandler.ReportResult)))
	mux.Handle("GET /api/sessions", requireAuth(http.HandlerFunc(sessionsHandler.List)))
	mux.Handle("GET /api/sessions/{id}", requireAuth(http.HandlerFunc(sessionsHandler.Get)))
	mux.Handle("GET /api/sessions/{id}/download", requireAuth(http.HandlerFunc(sessionsHandler.Download)))

	// Admin surface
	mux.Handle("GET /api/admin/sessions", requireAdmin(http.HandlerFunc(adminHandler.ListAll)))
	mux.Handle("GET /api/admin/sessions/detailed", requireAdmin(http.HandlerFunc(adminHandler.ListAllDetailed)))
	mux.Handle("GET /api/admin/sessions/{id}", requireAdmin(http.HandlerFunc(adminHandler.Get)))
	mux.Handle("GET /api/admin/sessions/{id}/download", requireAdmin(http.HandlerFunc(adminHandler.Download)))

	chain := middleware.Recovery(logger)(
		middleware.LoggingWithSkip(logger, []string{"/health"})(mux),
	)

	return chain
}
