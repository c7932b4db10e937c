package models

import "time"

type DeliveryOutcome string

const (
	OutcomeSent    DeliveryOutcome = "SENT"
	OutcomeSkipped DeliveryOutcome = "SKIPPED"
)

// DeliveryAttempt is an append-only log entry describing the terminal
// outcome of one dispatch of one code. Intermediate retries are not logged.
type DeliveryAttempt struct {
	ID          string          `json:"id"`
	CodeHash    string          `json:"code_hash"`
	Code        string          `json:"code"`
	Outcome     DeliveryOutcome `json:"outcome"`
	Destination string          `json:"destination"`
	AttemptedAt time.Time       `json:"attempted_at"`
	Attempts    int             `json:"attempts"`
	StatusCode  *int            `json:"status_code,omitempty"`
	Error       string          `json:"error,omitempty"`
}
