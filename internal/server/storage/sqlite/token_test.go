package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setops/psigate/internal/models"
	"github.com/setops/psigate/internal/server/storage"
)

func saveTestToken(t *testing.T, ctx context.Context, s *Storage, userID, value string, expiresAt time.Time) {
	token := &models.SessionToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     value,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.SaveToken(ctx, token))
}

func TestTokenStorage_ResolveToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, models.RoleUser)

	now := time.Now()
	saveTestToken(t, ctx, s, userID, "valid-token", now.Add(24*time.Hour))

	identity, err := s.ResolveToken(ctx, "valid-token", now)
	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, models.RoleUser, identity.Role)

	_, err = s.ResolveToken(ctx, "unknown-token", now)
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}

func TestTokenStorage_ResolveToken_Expiry(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, models.RoleUser)

	expiresAt := time.Now().Add(time.Hour)
	saveTestToken(t, ctx, s, userID, "expiring-token", expiresAt)

	// Just before expiry the token still resolves
	_, err := s.ResolveToken(ctx, "expiring-token", expiresAt.Add(-time.Second))
	require.NoError(t, err)

	// At exactly expires_at the token is already expired
	_, err = s.ResolveToken(ctx, "expiring-token", expiresAt)
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)

	// And stays expired afterwards
	_, err = s.ResolveToken(ctx, "expiring-token", expiresAt.Add(time.Second))
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}

func TestTokenStorage_ResolveToken_RoleChangeTakesEffect(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, models.RoleUser)

	now := time.Now()
	saveTestToken(t, ctx, s, userID, "role-token", now.Add(24*time.Hour))

	identity, err := s.ResolveToken(ctx, "role-token", now)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, identity.Role)

	// The role is joined at resolution time, so a promotion is visible on
	// the very next resolution of the same token
	require.NoError(t, s.UpdateRole(ctx, userID, models.RoleAdmin))

	identity, err = s.ResolveToken(ctx, "role-token", now)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, identity.Role)
}

func TestTokenStorage_MultipleConcurrentTokens(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, models.RoleUser)

	now := time.Now()
	saveTestToken(t, ctx, s, userID, "token-one", now.Add(24*time.Hour))
	saveTestToken(t, ctx, s, userID, "token-two", now.Add(24*time.Hour))

	// Issuing a second token must not invalidate the first
	_, err := s.ResolveToken(ctx, "token-one", now)
	require.NoError(t, err)
	_, err = s.ResolveToken(ctx, "token-two", now)
	require.NoError(t, err)

	tokens, err := s.GetUserTokens(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, tokens, 2)
}

func TestTokenStorage_DeleteExpiredTokens(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, models.RoleUser)

	now := time.Now()
	saveTestToken(t, ctx, s, userID, "stale", now.Add(-time.Hour))
	saveTestToken(t, ctx, s, userID, "fresh", now.Add(time.Hour))

	deleted, err := s.DeleteExpiredTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	tokens, err := s.GetUserTokens(ctx, userID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "fresh", tokens[0].Token)
}
