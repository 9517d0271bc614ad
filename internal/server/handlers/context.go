package handlers

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/setops/psigate/internal/models"
)

// contextKey is the type for request context keys
type contextKey string

const (
	// IdentityKey holds the resolved models.Identity of the caller
	IdentityKey contextKey = "identity"
	// TokenKey holds the raw bearer token the caller presented
	TokenKey contextKey = "token"
)

// WithIdentity stores the resolved identity and its originating token in the
// request context. Used by the auth middleware.
func WithIdentity(ctx context.Context, identity *models.Identity, token string) context.Context {
	ctx = context.WithValue(ctx, IdentityKey, identity)
	return context.WithValue(ctx, TokenKey, token)
}

// GetIdentity extracts the resolved caller identity from the context.
// The acting identity is always the one the token resolved to; it is never
// supplied by the caller.
func GetIdentity(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*models.Identity)
	return identity, ok
}

// GetToken extracts the raw bearer token from the context.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// ClientAddr derives the caller's origin address, preferring the first
// X-Forwarded-For hop over the socket peer.
func ClientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			fwd = fwd[:idx]
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
