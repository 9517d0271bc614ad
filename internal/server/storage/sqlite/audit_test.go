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

func recordTestComputation(
	t *testing.T, ctx context.Context, s *Storage,
	userID string, payload []string, createdAt time.Time,
) string {
	c := &models.Computation{
		ID:               uuid.New().String(),
		UserID:           userID,
		ClientSize:       len(payload) + 2,
		IntersectionSize: len(payload),
		Intersection:     payload,
		ClientAddr:       "192.0.2.10",
		Provenance:       models.ProvenanceReported,
		CreatedAt:        createdAt,
	}

	id, err := s.RecordComputation(ctx, c)
	require.NoError(t, err)
	require.Equal(t, c.ID, id)

	return id
}

func TestAuditStorage_RecordAndGetDetail(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, models.RoleUser)

	payload := []string{"10.0.0.3", "10.0.0.1", "10.0.0.2"}
	id := recordTestComputation(t, ctx, s, userID, payload, time.Now())

	detail, err := s.GetDetail(ctx, id, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, detail.UserID)
	assert.Equal(t, 5, detail.ClientSize)
	assert.Equal(t, 3, detail.IntersectionSize)
	assert.Equal(t, "192.0.2.10", detail.ClientAddr)
	assert.Equal(t, models.ProvenanceReported, detail.Provenance)
	// Payload round-trips with element order preserved
	assert.Equal(t, payload, detail.Intersection)
}

func TestAuditStorage_RecordEmptyPayload(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, models.RoleUser)
	id := recordTestComputation(t, ctx, s, userID, nil, time.Now())

	detail, err := s.GetDetail(ctx, id, userID)
	require.NoError(t, err)
	assert.Empty(t, detail.Intersection)
}

func TestAuditStorage_GetDetail_OwnershipAsNotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	ownerID := createTestUser(t, ctx, s, models.RoleUser)
	otherID := createTestUser(t, ctx, s, models.RoleUser)

	id := recordTestComputation(t, ctx, s, ownerID, []string{"a"}, time.Now())

	// A foreign record and an absent record produce the same error
	_, err := s.GetDetail(ctx, id, otherID)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	_, err = s.GetDetail(ctx, "nonexistent-id", ownerID)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestAuditStorage_ListForUser_OrderingAndScope(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	aliceID := createTestUser(t, ctx, s, models.RoleUser)
	bobID := createTestUser(t, ctx, s, models.RoleUser)

	base := time.Now().Add(-time.Hour)
	// Interleave creation order across users
	first := recordTestComputation(t, ctx, s, aliceID, []string{"a"}, base)
	recordTestComputation(t, ctx, s, bobID, []string{"b"}, base.Add(1*time.Minute))
	second := recordTestComputation(t, ctx, s, aliceID, []string{"c"}, base.Add(2*time.Minute))
	recordTestComputation(t, ctx, s, bobID, []string{"d"}, base.Add(3*time.Minute))
	third := recordTestComputation(t, ctx, s, aliceID, []string{"e"}, base.Add(4*time.Minute))

	sessions, err := s.ListForUser(ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	// Only alice's records, strictly descending by creation time
	assert.Equal(t, third, sessions[0].ID)
	assert.Equal(t, second, sessions[1].ID)
	assert.Equal(t, first, sessions[2].ID)

	for _, sum := range sessions {
		assert.True(t, sum.CreatedAt.After(base.Add(-time.Second)))
	}
}

func TestAuditStorage_AdminQueries(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	aliceID := createTestUser(t, ctx, s, models.RoleUser)
	bobID := createTestUser(t, ctx, s, models.RoleUser)

	alice, err := s.GetUserByID(ctx, aliceID)
	require.NoError(t, err)
	bob, err := s.GetUserByID(ctx, bobID)
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour)
	olderID := recordTestComputation(t, ctx, s, aliceID, []string{"x", "y"}, base)
	newerID := recordTestComputation(t, ctx, s, bobID, []string{"z"}, base.Add(time.Minute))

	t.Run("ListAll joins usernames and orders desc", func(t *testing.T) {
		all, err := s.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, newerID, all[0].ID)
		assert.Equal(t, bob.Username, all[0].Username)
		assert.Equal(t, olderID, all[1].ID)
		assert.Equal(t, alice.Username, all[1].Username)
	})

	t.Run("ListAllWithPayload includes intersection data", func(t *testing.T) {
		all, err := s.ListAllWithPayload(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, []string{"z"}, all[0].Intersection)
		assert.Equal(t, []string{"x", "y"}, all[1].Intersection)
	})

	t.Run("GetDetailAsAdmin ignores ownership", func(t *testing.T) {
		detail, err := s.GetDetailAsAdmin(ctx, olderID)
		require.NoError(t, err)
		assert.Equal(t, alice.Username, detail.Username)
		assert.Equal(t, []string{"x", "y"}, detail.Intersection)
	})

	t.Run("GetDetailAsAdmin missing id", func(t *testing.T) {
		_, err := s.GetDetailAsAdmin(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	})
}
