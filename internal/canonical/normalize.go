// Package canonical turns collected drafts into identity-stable code records.
package canonical

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"shiftwatch/internal/models"
)

// CodePattern is the strict five-by-five code shape.
var CodePattern = regexp.MustCompile(`^[A-Z0-9]{5}(?:-[A-Z0-9]{5}){4}$`)

// CodeSearchPattern finds candidate codes inside free text. Separators may be
// any dash variant; NormalizeCode canonicalizes them.
var CodeSearchPattern = regexp.MustCompile(`\b[A-Z0-9]{5}(?:[-‐‑‒–—―−][A-Z0-9]{5}){4}\b`)

var (
	dashReplacer = strings.NewReplacer(
		"‐", "-", "‑", "-", "‒", "-", "–", "-",
		"—", "-", "―", "-", "−", "-", "﹘", "-",
		"﹣", "-", "－", "-",
	)
	whitespaceRun = regexp.MustCompile(`\s+`)
	invalidChars  = regexp.MustCompile(`[^A-Z0-9-]`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
)

// NormalizeCode returns the canonical form of raw and whether it matches the
// strict code shape. NormalizeCode(NormalizeCode(s)) == NormalizeCode(s).
func NormalizeCode(raw string) (string, bool) {
	s := dashReplacer.Replace(strings.TrimSpace(raw))
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = strings.ToUpper(s)
	s = invalidChars.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	if !CodePattern.MatchString(s) {
		return "", false
	}
	return s, true
}

func NormalizeStatus(raw string) models.Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "expired":
		return models.StatusExpired
	case "hold":
		return models.StatusHold
	default:
		return models.StatusActive
	}
}

// NormalizeExpiry drops parenthetical annotations such as "(10 AM PT)" and
// parses what remains. Unparsable input yields nil.
func NormalizeExpiry(raw string) *time.Time {
	s := strings.TrimSpace(parenthetical.ReplaceAllString(raw, ""))
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// ResolveFirstSeen parses raw, falling back to collectedAt.
func ResolveFirstSeen(raw string, collectedAt time.Time) time.Time {
	s := strings.TrimSpace(raw)
	if s != "" {
		if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
			return t.UTC()
		}
	}
	return collectedAt.UTC()
}

func NormalizeReward(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return models.UnknownReward
	}
	return s
}
