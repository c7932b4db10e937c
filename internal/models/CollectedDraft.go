package models

// CollectedDraft is an unvalidated candidate produced by a source parser.
// Empty strings mean the source did not provide the field.
type CollectedDraft struct {
	Code      string `json:"code"`
	Reward    string `json:"reward,omitempty"`
	Status    string `json:"status,omitempty"`
	Expires   string `json:"expires,omitempty"`
	FirstSeen string `json:"first_seen,omitempty"`
	URL       string `json:"url,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Fallback  bool   `json:"fallback,omitempty"`
}
