package notify

import (
	"time"

	json "github.com/goccy/go-json"

	"shiftwatch/internal/models"
)

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	URL         string       `json:"url,omitempty"`
	Fields      []embedField `json:"fields"`
	Timestamp   string       `json:"timestamp"`
}

type webhookPayload struct {
	Content string  `json:"content"`
	Embeds  []embed `json:"embeds"`
}

// BuildPayload renders the webhook body for one code.
func BuildPayload(rec models.CanonicalCode) ([]byte, error) {
	expires := "No expiry listed"
	if rec.ExpiresAt != nil {
		expires = rec.ExpiresAt.UTC().Format("Jan 2, 2006 15:04 MST")
	}

	e := embed{
		Title:       rec.Title + " SHiFT code",
		Description: "`" + rec.Code + "`",
		Fields: []embedField{
			{Name: "Reward", Value: rec.Reward, Inline: true},
			{Name: "Expires", Value: expires, Inline: true},
			{Name: "Status", Value: string(rec.Status), Inline: true},
		},
		Timestamp: rec.FirstSeenAt.UTC().Format(time.RFC3339),
	}
	if rec.Metadata != nil {
		e.URL = rec.Metadata.ReferenceURL
	}

	return json.Marshal(webhookPayload{
		Content: "New " + rec.Title + " code: " + rec.Code,
		Embeds:  []embed{e},
	})
}
