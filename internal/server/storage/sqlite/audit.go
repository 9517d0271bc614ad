package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/setops/psigate/internal/models"
	"github.com/setops/psigate/internal/server/storage"
)

// RecordComputation appends one audit record in a single INSERT.
// The intersection payload is serialized as a JSON array, which keeps element
// order; a nil payload is stored as an empty list.
func (s *Storage) RecordComputation(ctx context.Context, c *models.Computation) (string, error) {
	payload := c.Intersection
	if payload == nil {
		payload = []string{}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize intersection payload: %w", err)
	}

	query := `
		INSERT INTO psi_sessions
			(id, user_id, session_token, client_size, intersection_size,
			 intersection_data, client_ip, provenance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var token sql.NullString
	if c.Token != "" {
		token = sql.NullString{String: c.Token, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, query,
		c.ID,
		c.UserID,
		token,
		c.ClientSize,
		c.IntersectionSize,
		string(data),
		c.ClientAddr,
		string(c.Provenance),
		c.CreatedAt,
	)

	if err != nil {
		return "", fmt.Errorf("failed to insert psi session: %w", err)
	}

	return c.ID, nil
}

// ListForUser returns summaries of the user's own records, newest first.
// The intersection payload is not selected.
func (s *Storage) ListForUser(ctx context.Context, userID string) ([]*models.ComputationSummary, error) {
	query := `
		SELECT id, client_size, intersection_size, client_ip, created_at
		FROM psi_sessions
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user sessions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var sessions []*models.ComputationSummary

	for rows.Next() {
		sum := &models.ComputationSummary{}
		if err := rows.Scan(
			&sum.ID,
			&sum.ClientSize,
			&sum.IntersectionSize,
			&sum.ClientAddr,
			&sum.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}
		sessions = append(sessions, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return sessions, nil
}

// GetDetail returns the full record including payload, scoped to the owner.
// The WHERE clause filters on both id and user_id, so a record owned by
// someone else is indistinguishable from one that does not exist.
func (s *Storage) GetDetail(ctx context.Context, id, userID string) (*models.Computation, error) {
	query := `
		SELECT id, user_id, session_token, client_size, intersection_size,
		       intersection_data, client_ip, provenance, created_at
		FROM psi_sessions
		WHERE id = ? AND user_id = ?
	`

	c, err := scanComputation(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, err
	}

	return c, nil
}

// GetDetailAsAdmin returns any record joined with the owner's username.
func (s *Storage) GetDetailAsAdmin(ctx context.Context, id string) (*models.ComputationDetail, error) {
	query := `
		SELECT p.id, p.user_id, p.session_token, p.client_size, p.intersection_size,
		       p.intersection_data, p.client_ip, p.provenance, p.created_at, u.username
		FROM psi_sessions p
		JOIN users u ON p.user_id = u.id
		WHERE p.id = ?
	`

	row := s.db.QueryRowContext(ctx, query, id)

	detail := &models.ComputationDetail{}
	var token sql.NullString
	var data, provenance string

	err := row.Scan(
		&detail.ID,
		&detail.UserID,
		&token,
		&detail.ClientSize,
		&detail.IntersectionSize,
		&data,
		&detail.ClientAddr,
		&provenance,
		&detail.CreatedAt,
		&detail.Username,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get psi session: %w", err)
	}

	detail.Token = token.String
	detail.Provenance = models.Provenance(provenance)

	if err := json.Unmarshal([]byte(data), &detail.Intersection); err != nil {
		return nil, fmt.Errorf("failed to deserialize intersection payload: %w", err)
	}

	return detail, nil
}

// ListAll returns summaries across all users joined with usernames,
// newest first.
func (s *Storage) ListAll(ctx context.Context) ([]*models.ComputationSummary, error) {
	query := `
		SELECT p.id, u.username, p.client_size, p.intersection_size,
		       p.client_ip, p.created_at
		FROM psi_sessions p
		JOIN users u ON p.user_id = u.id
		ORDER BY p.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all sessions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var sessions []*models.ComputationSummary

	for rows.Next() {
		sum := &models.ComputationSummary{}
		if err := rows.Scan(
			&sum.ID,
			&sum.Username,
			&sum.ClientSize,
			&sum.IntersectionSize,
			&sum.ClientAddr,
			&sum.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session summary: %w", err)
		}
		sessions = append(sessions, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return sessions, nil
}

// ListAllWithPayload returns full records across all users joined with
// usernames, newest first.
func (s *Storage) ListAllWithPayload(ctx context.Context) ([]*models.ComputationDetail, error) {
	query := `
		SELECT p.id, p.user_id, p.session_token, p.client_size, p.intersection_size,
		       p.intersection_data, p.client_ip, p.provenance, p.created_at, u.username
		FROM psi_sessions p
		JOIN users u ON p.user_id = u.id
		ORDER BY p.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all sessions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var sessions []*models.ComputationDetail

	for rows.Next() {
		detail := &models.ComputationDetail{}
		var token sql.NullString
		var data, provenance string

		if err := rows.Scan(
			&detail.ID,
			&detail.UserID,
			&token,
			&detail.ClientSize,
			&detail.IntersectionSize,
			&data,
			&detail.ClientAddr,
			&provenance,
			&detail.CreatedAt,
			&detail.Username,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session detail: %w", err)
		}

		detail.Token = token.String
		detail.Provenance = models.Provenance(provenance)

		if err := json.Unmarshal([]byte(data), &detail.Intersection); err != nil {
			return nil, fmt.Errorf("failed to deserialize intersection payload: %w", err)
		}

		sessions = append(sessions, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return sessions, nil
}

func scanComputation(row *sql.Row) (*models.Computation, error) {
	c := &models.Computation{}
	var token sql.NullString
	var data, provenance string

	err := row.Scan(
		&c.ID,
		&c.UserID,
		&token,
		&c.ClientSize,
		&c.IntersectionSize,
		&data,
		&c.ClientAddr,
		&provenance,
		&c.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get psi session: %w", err)
	}

	c.Token = token.String
	c.Provenance = models.Provenance(provenance)

	if err := json.Unmarshal([]byte(data), &c.Intersection); err != nil {
		return nil, fmt.Errorf("failed to deserialize intersection payload: %w", err)
	}

	return c, nil
}
