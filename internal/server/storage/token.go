package storage

import (
	"context"
	"time"

	"github.com/setops/psigate/internal/models"
)

// TokenStorage defines interface for session token persistence
type TokenStorage interface {
	// SaveToken stores a new session token
	// Token values are unique; issuing never replaces an earlier token
	SaveToken(ctx context.Context, token *models.SessionToken) error

	// ResolveToken maps an unexpired token value to the owning user's current
	// identity. The role is read at resolution time, so a role change takes
	// effect on the next resolution.
	// Returns ErrTokenNotFound if the token is unknown or expired at now.
	ResolveToken(ctx context.Context, token string, now time.Time) (*models.Identity, error)

	// GetUserTokens retrieves all session tokens for a user, newest first
	GetUserTokens(ctx context.Context, userID string) ([]*models.SessionToken, error)

	// DeleteExpiredTokens removes tokens expired at the given instant
	// Returns number of deleted tokens
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error)
}
