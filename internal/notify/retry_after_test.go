package notify

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRetryAfter_Seconds(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 2*time.Second, ParseRetryAfter("2", now))
	assert.Equal(t, 120*time.Second, ParseRetryAfter(" 120 ", now))
}

func TestParseRetryAfter_Clamps(t *testing.T) {
	now := time.Now()
	assert.Equal(t, time.Second, ParseRetryAfter("0", now))
	assert.Equal(t, time.Second, ParseRetryAfter("-5", now))
	assert.Equal(t, time.Hour, ParseRetryAfter("86400", now))
	assert.Equal(t, time.Hour, ParseRetryAfter("999999999999999", now))
}

func TestParseRetryAfter_HTTPDate(t *testing.T) {
	now := time.Date(2025, 10, 10, 12, 0, 0, 0, time.UTC)
	header := now.Add(30 * time.Second).Format(http.TimeFormat)
	assert.Equal(t, 30*time.Second, ParseRetryAfter(header, now))

	past := now.Add(-time.Minute).Format(http.TimeFormat)
	assert.Equal(t, time.Second, ParseRetryAfter(past, now))

	far := now.Add(48 * time.Hour).Format(http.TimeFormat)
	assert.Equal(t, time.Hour, ParseRetryAfter(far, now))
}

func TestParseRetryAfter_Invalid(t *testing.T) {
	now := time.Now()
	assert.Equal(t, time.Second, ParseRetryAfter("", now))
	assert.Equal(t, time.Second, ParseRetryAfter("soon", now))
	assert.Equal(t, time.Second, ParseRetryAfter("1.5", now))
}
