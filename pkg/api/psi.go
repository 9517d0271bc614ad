package api

import "github.com/setops/psigate/internal/models"

// ProcessRequest wraps the hex-encoded opaque PSI request blob.
type ProcessRequest struct {
	RequestHex string `json:"request_hex"`
}

// ReportResultRequest is a client's standalone declaration of an
// intersection result. It is accepted at face value: nothing here is
// cross-checked against an actual setup/process exchange.
type ReportResultRequest struct {
	ClientSize       int    `json:"client_size"`
	IntersectionSize int    `json:"intersection_size"`
	IntersectionData string `json:"intersection_data"` // JSON array of strings
}

// ReportResultResponse returns the id of the recorded audit entry.
type ReportResultResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// SessionsResponse lists PSI session summaries.
type SessionsResponse struct {
	Sessions []*models.ComputationSummary `json:"sessions"`
}

// SessionsDetailedResponse lists PSI sessions with their payloads.
type SessionsDetailedResponse struct {
	Sessions []*models.ComputationDetail `json:"sessions"`
}

// SessionDownload is the attachment body served by the download endpoints.
type SessionDownload struct {
	SessionID        string   `json:"session_id"`
	Timestamp        string   `json:"timestamp"`
	Username         string   `json:"username,omitempty"` // admin downloads only
	ClientSize       int      `json:"client_size"`
	IntersectionSize int      `json:"intersection_size"`
	Intersection     []string `json:"intersection"`
	ClientAddr       string   `json:"client_ip,omitempty"` // admin downloads only
}
