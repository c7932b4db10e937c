package canonical

import (
	"strings"
	"time"

	"shiftwatch/internal/models"
)

type Canonicalizer struct {
	Title string
}

func NewCanonicalizer(title string) *Canonicalizer {
	return &Canonicalizer{Title: title}
}

// Canonicalize converts a draft observed by sourceID at collectedAt.
// The second return value is false when the code text is not a valid code.
func (c *Canonicalizer) Canonicalize(draft models.CollectedDraft, sourceID string, collectedAt time.Time) (models.CanonicalCode, bool) {
	code, ok := NormalizeCode(draft.Code)
	if !ok {
		return models.CanonicalCode{}, false
	}

	now := collectedAt.UTC()
	return models.CanonicalCode{
		Title:       c.Title,
		Code:        code,
		Reward:      NormalizeReward(draft.Reward),
		Status:      NormalizeStatus(draft.Status),
		ExpiresAt:   NormalizeExpiry(draft.Expires),
		FirstSeenAt: ResolveFirstSeen(draft.FirstSeen, now),
		Sources:     []string{sourceID},
		Hash:        IdentityHash(c.Title, code),
		CreatedAt:   now,
		UpdatedAt:   now,
		Metadata: &models.CodeMetadata{
			ReferenceURL: strings.TrimSpace(draft.URL),
			Note:         strings.TrimSpace(draft.Notes),
			Fallback:     draft.Fallback,
			DiscoveredBy: sourceID,
		},
	}, true
}

// CanonicalizeAll canonicalizes every draft and reports how many were rejected.
func (c *Canonicalizer) CanonicalizeAll(drafts []models.CollectedDraft, sourceID string, collectedAt time.Time) ([]models.CanonicalCode, int) {
	out := make([]models.CanonicalCode, 0, len(drafts))
	rejected := 0
	for _, d := range drafts {
		rec, ok := c.Canonicalize(d, sourceID, collectedAt)
		if !ok {
			rejected++
			continue
		}
		out = append(out, rec)
	}
	return out, rejected
}
