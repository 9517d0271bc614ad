package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/setops/psigate/internal/models"
	"github.com/setops/psigate/internal/server/handlers"
)

// TokenResolver maps a presented bearer token to the owning user's current
// identity. Implemented by the auth service.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*models.Identity, error)
}

// Auth creates middleware that requires a valid bearer token.
// Missing, malformed, unknown and expired tokens are all reported as 401;
// the resolved identity and the raw token are placed into the request
// context for handlers.
func Auth(logger *slog.Logger, resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("missing Authorization header", "path", r.URL.Path)
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			// Expected format: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("invalid Authorization header format", "path", r.URL.Path)
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			token := parts[1]

			identity, err := resolver.ResolveToken(r.Context(), token)
			if err != nil {
				logger.Warn("token resolution failed", "path", r.URL.Path, "error", err)
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			logger.Debug("user authenticated",
				"user_id", identity.UserID,
				"role", string(identity.Role))

			ctx := handlers.WithIdentity(r.Context(), identity, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin creates middleware that gates a route to admin identities.
// It must run after Auth. A non-admin caller gets 403, which is deliberately
// distinct from the 401 an unauthenticated caller sees.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := handlers.GetIdentity(r.Context())
			if !ok {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			if !identity.IsAdmin() {
				logger.Warn("admin access denied",
					"user_id", identity.UserID,
					"role", string(identity.Role),
					"path", r.URL.Path)
				http.Error(w, "Admin access required", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
