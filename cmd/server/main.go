package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/setops/psigate/internal/server"
	"github.com/setops/psigate/internal/server/auth"
	"github.com/setops/psigate/internal/server/config"
	"github.com/setops/psigate/internal/server/psi"
	"github.com/setops/psigate/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	// The server item set is read once and held immutable for the process
	// lifetime; reloading requires a restart
	items, err := psi.LoadItems(cfg.ServerSetPath)
	if err != nil {
		return fmt.Errorf("failed to load server item set: %w", err)
	}

	// One engine instance with one fixed key for the whole process
	engine, err := psi.StartHelper(logger, cfg.EngineCommand, cfg.PSI)
	if err != nil {
		return fmt.Errorf("failed to start psi engine: %w", err)
	}
	defer func() {
		_ = engine.Close()
	}()

	orch := psi.NewOrchestrator(logger, engine, cfg.PSI, items)
	logger.Info("server item set loaded",
		slog.String("path", cfg.ServerSetPath),
		slog.Int("items", orch.ItemCount()))

	authSvc := auth.NewService(logger, store, store, cfg.TokenTTL)

	// Expired tokens are dead weight: resolution already filters them out,
	// so the reaper just keeps the table from growing unboundedly.
	go reapExpiredTokens(ctx, logger, store)

	handler := server.NewRouter(server.Options{
		Logger:          logger,
		AuthService:     authSvc,
		Orchestrator:    orch,
		Audit:           store,
		LoginRateLimit:  cfg.LoginRateLimit,
		LoginRateWindow: cfg.LoginRateWindow,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			slog.String("addr", cfg.Addr),
			slog.String("version", Version))
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	return nil
}

// reapExpiredTokens periodically deletes session tokens past their expiry.
func reapExpiredTokens(ctx context.Context, logger *slog.Logger, store *sqlite.Storage) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := store.DeleteExpiredTokens(ctx, time.Now())
			if err != nil {
				logger.Warn("failed to delete expired tokens", slog.Any("error", err))
				continue
			}
			if deleted > 0 {
				logger.Info("expired tokens deleted", slog.Int("count", deleted))
			}
		}
	}
}

func printVersion() {
	fmt.Printf("psigate server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
