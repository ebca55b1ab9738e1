package models

import "time"

// Per-field length bounds applied during sanitization. Values beyond
// these are truncated, never rejected.
const (
	MaxRequestIDLength = 120
	MaxNameLength      = 120
	MaxEmailLength     = 160
	MaxSubjectLength   = 180
	MaxMessageLength   = 4000
	MaxTimestampLength = 80
)

// ValidatedPayload is a contact-form submission after sanitization and
// validation. All fields are trimmed, whitespace-collapsed, non-empty
// strings within their bounds. Immutable once produced.
type ValidatedPayload struct {
	RequestID string `json:"requestId" validate:"required,max=120"`
	Name      string `json:"name" validate:"required,max=120"`
	Email     string `json:"email" validate:"required,max=160,contact_email"`
	Subject   string `json:"subject" validate:"required,max=180"`
	Message   string `json:"message" validate:"required,max=4000"`
	Timestamp string `json:"timestamp" validate:"required,max=80"`
}

// SubmissionResponse is the success envelope for POST /contact.
// Status is "accepted" on first delivery and "duplicate" on an
// idempotent replay.
type SubmissionResponse struct {
	OK        bool   `json:"ok"`
	Status    string `json:"status"`
	RequestID string `json:"requestId"`
}

// ErrorResponse is the failure envelope for every non-2xx response.
// Retryable is set only for upstream and transport failures, where the
// idempotency layer makes a client resend safe.
type ErrorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

// HealthResponse reports process liveness and gateway counters.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Uptime    string                 `json:"uptime"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
}
