package models

import "time"

// Role defines the authorization level of a user.
type Role string

const (
	// RoleUser is a regular account, limited to its own PSI sessions
	RoleUser Role = "user"
	// RoleAdmin can inspect PSI sessions across all users
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account.
// The secret digest is a one-way bcrypt hash; the plaintext secret is never
// persisted or logged.
type User struct {
	ID           string    `json:"id"`         // UUID
	Username     string    `json:"username"`   // unique, case-sensitive
	SecretDigest string    `json:"-"`          // bcrypt digest of the password
	Role         Role      `json:"role"`       // user | admin
	CreatedAt    time.Time `json:"created_at"` // creation time
}

// Identity is the resolved (user id, role) pair a valid token maps to.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the identity carries admin privileges.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
