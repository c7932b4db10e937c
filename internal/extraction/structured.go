package extraction

import (
	"strings"

	json "github.com/goccy/go-json"

	"shiftwatch/internal/models"
)

// Accepted key aliases, in priority order.
var (
	codeKeys      = []string{"code", "shift_code", "shiftCode", "key", "text"}
	rewardKeys    = []string{"reward", "rewards", "description", "title"}
	statusKeys    = []string{"status", "state"}
	expiresKeys   = []string{"expires", "expires_at", "expiresAt", "expiry", "expiration"}
	firstSeenKeys = []string{"first_seen", "firstSeen", "posted_at", "created_at", "date"}
	urlKeys       = []string{"url", "link", "source_url"}
	notesKeys     = []string{"notes", "note", "content", "body"}
)

// ParseStructuredFeed accepts a top-level array or an object with a "codes"
// array. Elements without a resolvable code are dropped, as is any input
// that is not JSON of one of those shapes.
func ParseStructuredFeed(raw []byte) []models.CollectedDraft {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		codes, ok := v["codes"].([]any)
		if !ok {
			return nil
		}
		items = codes
	default:
		return nil
	}

	drafts := make([]models.CollectedDraft, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		code := firstString(obj, codeKeys)
		if code == "" {
			continue
		}
		drafts = append(drafts, models.CollectedDraft{
			Code:      code,
			Reward:    firstString(obj, rewardKeys),
			Status:    firstString(obj, statusKeys),
			Expires:   firstString(obj, expiresKeys),
			FirstSeen: firstString(obj, firstSeenKeys),
			URL:       firstString(obj, urlKeys),
			Notes:     firstString(obj, notesKeys),
		})
	}
	return drafts
}

func firstString(obj map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}
