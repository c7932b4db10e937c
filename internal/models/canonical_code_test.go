package models

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnionSources(t *testing.T) {
	assert.Equal(t, []string{"article", "feed", "social"}, UnionSources([]string{"social", "feed"}, []string{"article", "feed", ""}))
	assert.Equal(t, []string{}, UnionSources(nil, nil))
	assert.Equal(t, UnionSources([]string{"b"}, []string{"a"}), UnionSources([]string{"a"}, []string{"b"}))
}

func TestCanonicalCode_Clone(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	notified := exp.Add(-time.Hour)
	orig := CanonicalCode{
		Code:      "AAAAA-BBBBB-CCCCC-DDDDD-EEEEE",
		Sources:   []string{"feed"},
		ExpiresAt: &exp,
		Metadata:  &CodeMetadata{Note: "n", NotifiedAt: &notified},
	}

	c := orig.Clone()
	c.Sources[0] = "x"
	*c.ExpiresAt = exp.Add(time.Hour)
	c.Metadata.Note = "changed"
	*c.Metadata.NotifiedAt = exp

	assert.Equal(t, "feed", orig.Sources[0])
	assert.Equal(t, exp, *orig.ExpiresAt)
	assert.Equal(t, "n", orig.Metadata.Note)
	assert.Equal(t, exp.Add(-time.Hour), *orig.Metadata.NotifiedAt)
}

func TestCanonicalCode_Accessors(t *testing.T) {
	var c CanonicalCode
	assert.False(t, c.IsFallback())
	assert.Nil(t, c.NotifiedAt())

	c.Metadata = &CodeMetadata{Fallback: true}
	assert.True(t, c.IsFallback())
}

func TestRunSummary_JSONDuration(t *testing.T) {
	in := RunSummary{
		RunID:      "run-1",
		RanAt:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		TotalCodes: 4,
		NewCodes:   1,
		Duration:   1500 * time.Millisecond,
		Sources:    []string{"feed"},
	}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"duration_ms":1500`)
	assert.Contains(t, string(raw), `"run_id":"run-1"`)

	var out RunSummary
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in.RunID, out.RunID)
	assert.Equal(t, in.Duration, out.Duration)
	assert.Equal(t, in.TotalCodes, out.TotalCodes)
	assert.True(t, in.RanAt.Equal(out.RanAt))
}
