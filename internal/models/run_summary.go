package models

import (
	"time"

	json "github.com/goccy/go-json"
)

// SourceReport is the per-source breakdown of one run.
type SourceReport struct {
	Source   string `json:"source"`
	Fetched  int    `json:"fetched"`
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Fallback bool   `json:"fallback,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RunSummary is the immutable result of one monitoring pass.
// DuplicatesSkipped is TotalCodes minus NewCodes, so it also counts
// records that were updated rather than skipped.
type RunSummary struct {
	RunID             string    `json:"run_id"`
	RanAt             time.Time `json:"ran_at"`
	TotalCodes        int       `json:"total_codes"`
	NewCodes          int       `json:"new_codes"`
	DuplicatesSkipped int       `json:"duplicates_skipped"`
	NotificationsSent int       `json:"notifications_sent"`
	// Errors counts fetch failures other than 429 and 5xx responses, which
	// are counted only in RateLimited and ServerErrors.
	Errors        int            `json:"errors"`
	RateLimited   int            `json:"rate_limited"`
	ServerErrors  int            `json:"server_errors"`
	Sources       []string       `json:"sources"`
	Duration      time.Duration  `json:"-"`
	SourceReports []SourceReport `json:"source_reports,omitempty"`
}

type runSummaryAlias RunSummary

type runSummaryJSON struct {
	*runSummaryAlias
	DurationMs int64 `json:"duration_ms"`
}

func (r RunSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(runSummaryJSON{
		runSummaryAlias: (*runSummaryAlias)(&r),
		DurationMs:      r.Duration.Milliseconds(),
	})
}

func (r *RunSummary) UnmarshalJSON(data []byte) error {
	aux := runSummaryJSON{runSummaryAlias: (*runSummaryAlias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Duration = time.Duration(aux.DurationMs) * time.Millisecond
	return nil
}
