package storage

import (
	"context"

	"github.com/setops/psigate/internal/models"
)

// AuditStorage defines interface for the append-only PSI computation log.
// There are no update or delete operations: records are immutable once
// written.
type AuditStorage interface {
	// RecordComputation appends one audit record and returns its id.
	// The intersection payload is serialized losslessly, order preserved,
	// in the same write as the scalar fields.
	RecordComputation(ctx context.Context, c *models.Computation) (string, error)

	// ListForUser returns summaries of the user's own records,
	// descending by creation time. Payloads are excluded.
	ListForUser(ctx context.Context, userID string) ([]*models.ComputationSummary, error)

	// GetDetail returns the full record including payload, but only if it
	// belongs to userID. A foreign or absent record both yield
	// ErrSessionNotFound.
	GetDetail(ctx context.Context, id, userID string) (*models.Computation, error)

	// GetDetailAsAdmin returns any record joined with the owner's username.
	// Returns ErrSessionNotFound if the id does not exist.
	GetDetailAsAdmin(ctx context.Context, id string) (*models.ComputationDetail, error)

	// ListAll returns summaries across all users joined with usernames,
	// descending by creation time.
	ListAll(ctx context.Context) ([]*models.ComputationSummary, error)

	// ListAllWithPayload returns full records across all users joined with
	// usernames, descending by creation time.
	ListAllWithPayload(ctx context.Context) ([]*models.ComputationDetail, error)
}
