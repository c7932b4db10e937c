// Package merge reconciles a freshly observed code with its persisted record.
//
// Field precedence when a persisted record exists:
//
//	Title, Code, Hash, CreatedAt  existing
//	Reward                        incoming unless "Unknown"
//	Status, UpdatedAt             incoming
//	ExpiresAt                     incoming when set, else existing
//	FirstSeenAt                   earlier of the two
//	Sources                       sorted union
//	Metadata fields               incoming when non-empty, else existing
//	Metadata.NotifiedAt           existing (only WithNotified/ClearNotified change it)
package merge

import (
	"time"

	"shiftwatch/internal/models"
	"shiftwatch/internal/notify"
)

type Result struct {
	Record    models.CanonicalCode
	Inserted  bool
	Candidate bool
}

// Merge combines incoming with existing (nil when the code is new). A new
// record is always a notification candidate; an existing one only when it was
// never notified and is currently eligible at now.
func Merge(existing *models.CanonicalCode, incoming models.CanonicalCode, now time.Time) Result {
	if existing == nil {
		rec := incoming.Clone()
		rec.Sources = models.UnionSources(rec.Sources, nil)
		return Result{Record: rec, Inserted: true, Candidate: true}
	}

	rec := existing.Clone()
	rec.Sources = models.UnionSources(existing.Sources, incoming.Sources)
	rec.Status = incoming.Status
	rec.UpdatedAt = incoming.UpdatedAt
	if incoming.Reward != "" && incoming.Reward != models.UnknownReward {
		rec.Reward = incoming.Reward
	}
	if rec.Reward == "" {
		rec.Reward = models.UnknownReward
	}
	if incoming.ExpiresAt != nil {
		t := *incoming.ExpiresAt
		rec.ExpiresAt = &t
	}
	if !incoming.FirstSeenAt.IsZero() && (rec.FirstSeenAt.IsZero() || incoming.FirstSeenAt.Before(rec.FirstSeenAt)) {
		rec.FirstSeenAt = incoming.FirstSeenAt
	}
	rec.Metadata = overlayMetadata(existing.Metadata, incoming.Metadata)

	candidate := rec.NotifiedAt() == nil && notify.Eligible(rec, now)
	return Result{Record: rec, Inserted: false, Candidate: candidate}
}

// overlayMetadata is a shallow right-biased overlay: non-empty incoming
// values replace existing ones. The fallback flag can only be cleared by a
// live observation, never set on a record that already had live data.
func overlayMetadata(existing, incoming *models.CodeMetadata) *models.CodeMetadata {
	if existing == nil && incoming == nil {
		return nil
	}
	out := &models.CodeMetadata{}
	if existing != nil {
		*out = *existing
		if existing.NotifiedAt != nil {
			t := *existing.NotifiedAt
			out.NotifiedAt = &t
		}
	} else {
		out.Fallback = incoming.Fallback
	}
	if incoming == nil {
		return out
	}
	if incoming.ReferenceURL != "" {
		out.ReferenceURL = incoming.ReferenceURL
	}
	if incoming.Note != "" {
		out.Note = incoming.Note
	}
	if incoming.DiscoveredBy != "" && out.DiscoveredBy == "" {
		out.DiscoveredBy = incoming.DiscoveredBy
	}
	if !incoming.Fallback {
		out.Fallback = false
	}
	return out
}

// WithNotified overlays only the notified timestamp.
func WithNotified(rec models.CanonicalCode, at time.Time) models.CanonicalCode {
	out := rec.Clone()
	if out.Metadata == nil {
		out.Metadata = &models.CodeMetadata{}
	}
	t := at.UTC()
	out.Metadata.NotifiedAt = &t
	return out
}

// ClearNotified drops the notified timestamp so the record can be sent again.
func ClearNotified(rec models.CanonicalCode, at time.Time) models.CanonicalCode {
	out := rec.Clone()
	if out.Metadata != nil {
		out.Metadata.NotifiedAt = nil
	}
	out.UpdatedAt = at.UTC()
	return out
}
