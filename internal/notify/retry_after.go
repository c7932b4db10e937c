package notify

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	minRetryAfter = time.Second
	maxRetryAfter = time.Hour
)

// ParseRetryAfter interprets a Retry-After header as delay-seconds or an
// HTTP date relative to now, clamped to [1s, 1h]. Missing or unparsable
// values yield the minimum.
func ParseRetryAfter(header string, now time.Time) time.Duration {
	h := strings.TrimSpace(header)
	if h == "" {
		return minRetryAfter
	}

	var d time.Duration
	if secs, err := strconv.ParseInt(h, 10, 64); err == nil {
		if secs < 0 {
			return minRetryAfter
		}
		if secs > int64(maxRetryAfter/time.Second) {
			return maxRetryAfter
		}
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(h); err == nil {
		d = at.Sub(now)
	} else {
		return minRetryAfter
	}

	if d < minRetryAfter {
		return minRetryAfter
	}
	if d > maxRetryAfter {
		return maxRetryAfter
	}
	return d
}
