package models

import (
	"sort"
	"time"
)

type Status string

const (
	StatusActive  Status = "Active"
	StatusExpired Status = "Expired"
	StatusHold    Status = "Hold"
)

const UnknownReward = "Unknown"

// CodeMetadata carries the optional, non-identity attributes of a code.
type CodeMetadata struct {
	ReferenceURL string     `json:"reference_url,omitempty"`
	Note         string     `json:"note,omitempty"`
	Fallback     bool       `json:"fallback,omitempty"`
	DiscoveredBy string     `json:"discovered_by,omitempty"`
	NotifiedAt   *time.Time `json:"notified_at,omitempty"`
}

// CanonicalCode is the persisted, identity-stable form of a redemption code.
// Hash is derived from Title and Code only.
type CanonicalCode struct {
	Title       string        `json:"title"`
	Code        string        `json:"code"`
	Reward      string        `json:"reward"`
	Status      Status        `json:"status"`
	ExpiresAt   *time.Time    `json:"expires_at,omitempty"`
	FirstSeenAt time.Time     `json:"first_seen_at"`
	Sources     []string      `json:"sources"`
	Hash        string        `json:"hash"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Metadata    *CodeMetadata `json:"metadata,omitempty"`
}

// IsFallback reports whether the record came from sample data.
func (c *CanonicalCode) IsFallback() bool {
	return c.Metadata != nil && c.Metadata.Fallback
}

// NotifiedAt returns the last successful notification time, if any.
func (c *CanonicalCode) NotifiedAt() *time.Time {
	if c.Metadata == nil {
		return nil
	}
	return c.Metadata.NotifiedAt
}

// Clone returns a deep copy so callers can mutate without aliasing the
// source slices and pointers.
func (c CanonicalCode) Clone() CanonicalCode {
	out := c
	out.Sources = append([]string(nil), c.Sources...)
	if c.ExpiresAt != nil {
		t := *c.ExpiresAt
		out.ExpiresAt = &t
	}
	if c.Metadata != nil {
		m := *c.Metadata
		if c.Metadata.NotifiedAt != nil {
			t := *c.Metadata.NotifiedAt
			m.NotifiedAt = &t
		}
		out.Metadata = &m
	}
	return out
}

// UnionSources returns the sorted, de-duplicated union of both source sets.
func UnionSources(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		set[s] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
