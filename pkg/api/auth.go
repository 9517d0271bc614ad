// Package api defines the wire types of the HTTP surface.
package api

// LoginRequest is the credential pair presented at login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token and the resolved identity.
type LoginResponse struct {
	Token  string `json:"token"`   // opaque bearer token
	UserID string `json:"user_id"` // owning user
	Role   string `json:"role"`    // user | admin
}

// LogoutResponse acknowledges a logout. Logout is client-side only: the
// token remains valid until its expiry.
type LogoutResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries an error back to the caller.
type ErrorResponse struct {
	Error string `json:"error"`
}
