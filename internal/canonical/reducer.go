package canonical

import "shiftwatch/internal/models"

// Reduce collapses records sharing an identity hash with a left fold in
// arrival order: sources are unioned and the first non-default reward,
// expiry, reference URL and note win. The fallback flag survives only if
// every contributing record was a fallback.
func Reduce(records []models.CanonicalCode) []models.CanonicalCode {
	index := make(map[string]int, len(records))
	out := make([]models.CanonicalCode, 0, len(records))

	for _, rec := range records {
		i, seen := index[rec.Hash]
		if !seen {
			index[rec.Hash] = len(out)
			cp := rec.Clone()
			cp.Sources = models.UnionSources(cp.Sources, nil)
			out = append(out, cp)
			continue
		}

		acc := &out[i]
		acc.Sources = models.UnionSources(acc.Sources, rec.Sources)
		if acc.Reward == models.UnknownReward && rec.Reward != models.UnknownReward {
			acc.Reward = rec.Reward
		}
		if acc.ExpiresAt == nil && rec.ExpiresAt != nil {
			t := *rec.ExpiresAt
			acc.ExpiresAt = &t
		}
		foldMetadata(acc, rec.Metadata)
	}
	return out
}

func foldMetadata(acc *models.CanonicalCode, next *models.CodeMetadata) {
	if next == nil {
		if acc.Metadata != nil {
			acc.Metadata.Fallback = false
		}
		return
	}
	if acc.Metadata == nil {
		acc.Metadata = &models.CodeMetadata{DiscoveredBy: next.DiscoveredBy}
	}
	if acc.Metadata.ReferenceURL == "" {
		acc.Metadata.ReferenceURL = next.ReferenceURL
	}
	if acc.Metadata.Note == "" {
		acc.Metadata.Note = next.Note
	}
	acc.Metadata.Fallback = acc.Metadata.Fallback && next.Fallback
}
