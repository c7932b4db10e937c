package extraction

import "shiftwatch/internal/models"

const sampleNote = "sample data"

var samples = map[string][]models.CollectedDraft{
	SourceFeed: {
		{Code: "K5WBJ-XKJZT-9FWTB-JBTB3-6CBW5", Reward: "3 Golden Keys", Status: "Active"},
		{Code: "WSWTJ-W5JBK-J6FJT-T3BBT-HXT35", Reward: "Golden Key", Status: "Expired", Expires: "2023-10-01"},
	},
	SourceSocial: {
		{Code: "K5WBJ-XKJZT-9FWTB-JBTB3-6CBW5", Reward: "3 Golden Keys"},
	},
	SourceArticle: {
		{Code: "CZ5TB-FX6RJ-RTJ3K-3JTJ3-SWXBK", Reward: "5 Golden Keys", Expires: "December 31, 2030"},
	},
	SourceCommunity: {
		{Code: "3SXBJ-T6JTB-5XWBK-JXTTT-K65SZ", Reward: "Unknown"},
	},
}

// FallbackDrafts returns fixed sample drafts for sourceID, used when the
// source has no configured URL. Every draft is marked Fallback.
func FallbackDrafts(sourceID string) []models.CollectedDraft {
	base := samples[sourceID]
	out := make([]models.CollectedDraft, len(base))
	for i, d := range base {
		d.Fallback = true
		d.Notes = sampleNote
		out[i] = d
	}
	return out
}
