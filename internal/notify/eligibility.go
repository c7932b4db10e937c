// Package notify decides which codes may be announced and delivers the
// announcements to a webhook.
package notify

import (
	"time"

	"shiftwatch/internal/models"
)

// Eligible reports whether rec may be announced at now: it must not be
// sample data, must be Active, and must not have expired.
func Eligible(rec models.CanonicalCode, now time.Time) bool {
	if rec.IsFallback() {
		return false
	}
	if rec.Status != models.StatusActive {
		return false
	}
	return rec.ExpiresAt == nil || rec.ExpiresAt.After(now)
}

// FilterEligible keeps the eligible records, preserving order.
func FilterEligible(records []models.CanonicalCode, now time.Time) []models.CanonicalCode {
	out := make([]models.CanonicalCode, 0, len(records))
	for _, r := range records {
		if Eligible(r, now) {
			out = append(out, r)
		}
	}
	return out
}
