package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/setops/psigate/internal/models"
	"github.com/setops/psigate/internal/server/storage"
)

// SaveToken stores a new session token
func (s *Storage) SaveToken(ctx context.Context, token *models.SessionToken) error {
	query := `
		INSERT INTO session_tokens (id, user_id, token, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save session token: %w", err)
	}

	return nil
}

// ResolveToken maps an unexpired token value to the owning user's current
// identity. The role is joined from the users table at resolution time.
// A token whose expires_at is at or before now resolves to ErrTokenNotFound.
func (s *Storage) ResolveToken(ctx context.Context, token string, now time.Time) (*models.Identity, error) {
	query := `
		SELECT u.id, u.username, u.role
		FROM session_tokens st
		JOIN users u ON st.user_id = u.id
		WHERE st.token = ? AND st.expires_at > ?
	`

	identity := &models.Identity{}
	var role string

	err := s.db.QueryRowContext(ctx, query, token, now).Scan(
		&identity.UserID,
		&identity.Username,
		&role,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}

	identity.Role = models.Role(role)

	return identity, nil
}

// GetUserTokens retrieves all session tokens for a user, newest first
func (s *Storage) GetUserTokens(ctx context.Context, userID string) ([]*models.SessionToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, created_at
		FROM session_tokens
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user tokens: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var tokens []*models.SessionToken

	for rows.Next() {
		token := &models.SessionToken{}
		if err := rows.Scan(
			&token.ID,
			&token.UserID,
			&token.Token,
			&token.ExpiresAt,
			&token.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tokens, nil
}

// DeleteExpiredTokens removes tokens expired at the given instant
func (s *Storage) DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error) {
	query := `DELETE FROM session_tokens WHERE expires_at <= ?`

	result, err := s.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}
