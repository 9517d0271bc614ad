// Command useradm provisions user accounts.
//
// Usage:
//
//	useradm [-db path] [-role user|admin] <username>
//
// The secret is read from the terminal without echo, or from the
// PSIGATE_SECRET environment variable for scripted provisioning.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/setops/psigate/internal/models"
	"github.com/setops/psigate/internal/server/auth"
	"github.com/setops/psigate/internal/server/storage"
	"github.com/setops/psigate/internal/server/storage/sqlite"
	"github.com/setops/psigate/internal/validation"
)

func main() {
	dbPath := flag.String("db", "data/psigate.db", "SQLite database path")
	role := flag.String("role", "user", "account role: user or admin")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: useradm [-db path] [-role user|admin] <username>")
		os.Exit(2)
	}

	if err := run(*dbPath, flag.Arg(0), models.Role(*role)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath, username string, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("role must be %q or %q", models.RoleUser, models.RoleAdmin)
	}

	if err := validation.ValidateUsername(username); err != nil {
		return err
	}

	secret, err := readSecret()
	if err != nil {
		return err
	}

	if err := validation.ValidateSecret(secret); err != nil {
		return err
	}

	ctx := context.Background()

	store, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc := auth.NewService(logger, store, store, auth.DefaultTokenTTL)

	user, err := svc.CreateUser(ctx, username, secret, role)
	if err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return fmt.Errorf("user %q already exists", username)
		}
		return err
	}

	fmt.Printf("%s %q created (id %s)\n", role, username, user.ID)
	if role == models.RoleAdmin {
		fmt.Println("this account can view PSI sessions of all users")
	}

	return nil
}

// readSecret takes the secret from PSIGATE_SECRET if set, otherwise prompts
// on the terminal with echo disabled.
func readSecret() (string, error) {
	if secret := os.Getenv("PSIGATE_SECRET"); secret != "" {
		return secret, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(raw), nil
}
