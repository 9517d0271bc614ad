package models

import "time"

// SessionToken is a bearer token bound to a user with an absolute expiry.
// One user may hold several concurrently valid tokens; tokens are never
// revoked server-side, they simply expire.
type SessionToken struct {
	ID        string    `json:"id"`         // UUID of the token row
	UserID    string    `json:"user_id"`    // owning user
	Token     string    `json:"token"`      // opaque random value, base64url
	ExpiresAt time.Time `json:"expires_at"` // absolute expiry instant
	CreatedAt time.Time `json:"created_at"` // issuance time
}

// ExpiredAt reports whether the token is expired at the given instant.
// A token is invalid the moment now reaches ExpiresAt.
func (t *SessionToken) ExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Provenance records how a PSI computation result entered the audit log.
type Provenance string

// ProvenanceReported marks a result declared by the client itself. Such
// records are accepted at face value and are not proof that a PSI exchange
// actually took place.
const ProvenanceReported Provenance = "client-reported"

// Computation is one audit record of a completed PSI computation.
// Records are append-only and immutable after creation.
type Computation struct {
	ID               string     `json:"id"`                // UUID
	UserID           string     `json:"user_id"`           // actor
	Token            string     `json:"-"`                 // originating token, optional
	ClientSize       int        `json:"client_size"`       // declared client set size
	IntersectionSize int        `json:"intersection_size"` // declared intersection size
	Intersection     []string   `json:"intersection"`      // ordered payload, possibly empty
	ClientAddr       string     `json:"client_ip"`         // origin address
	Provenance       Provenance `json:"provenance"`        // how the record was produced
	CreatedAt        time.Time  `json:"created_at"`
}

// ComputationSummary is the list-view projection of a Computation.
// It deliberately excludes the intersection payload.
type ComputationSummary struct {
	ID               string    `json:"id"`
	Username         string    `json:"username,omitempty"` // filled for admin views
	ClientSize       int       `json:"client_size"`
	IntersectionSize int       `json:"intersection_size"`
	ClientAddr       string    `json:"client_ip"`
	CreatedAt        time.Time `json:"created_at"`
}

// ComputationDetail is a full record joined with its owner's username,
// returned by admin-scoped detail queries.
type ComputationDetail struct {
	Computation
	Username string `json:"username"`
}
