package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"shiftwatch/internal/providers"
	"shiftwatch/internal/structures"
)

const (
	MaxBodyBytes     = 5 << 20
	DefaultUserAgent = "shiftwatch/1.0 (+https://github.com/shiftwatch)"
)

type FailureClass int

const (
	ClassOther FailureClass = iota
	ClassRateLimited
	ClassServerError
)

func (c FailureClass) String() string {
	switch c {
	case ClassRateLimited:
		return "rate_limited"
	case ClassServerError:
		return "server_error"
	default:
		return "other"
	}
}

// FetchError describes a failed source fetch. StatusCode is zero for
// transport failures.
type FetchError struct {
	Source     string
	StatusCode int
	Class      FailureClass
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ClassifyStatus maps a non-2xx status code to a failure class.
func ClassifyStatus(status int) FailureClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ClassRateLimited
	case status >= 500 && status <= 599:
		return ClassServerError
	default:
		return ClassOther
	}
}

// Classify reports the failure class of err; errors that are not fetch
// errors are ClassOther.
func Classify(err error) FailureClass {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Class
	}
	return ClassOther
}

type FetcherInterface interface {
	Fetch(ctx context.Context, src Source) ([]byte, error)
}

type Fetcher struct {
	client    *http.Client
	userAgent string
	logger    providers.Logger
}

func NewFetcher(conf *structures.Config, client *http.Client, logger providers.Logger) *Fetcher {
	ua := conf.HTTP.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Fetcher{client: client, userAgent: ua, logger: logger}
}

// Fetch performs a single GET against src.URL. There is no retry here;
// the next scheduled run is the retry.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, &FetchError{Source: src.ID, Class: ClassOther, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	if src.Kind == KindArticle {
		req.Header.Set("Accept", "text/html,application/xhtml+xml")
	} else {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warnf(providers.TypeFetch, "source %s: %v", src.ID, err)
		return nil, &FetchError{Source: src.ID, Class: ClassOther, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		f.logger.Warnf(providers.TypeFetch, "source %s: HTTP %d", src.ID, resp.StatusCode)
		return nil, &FetchError{Source: src.ID, StatusCode: resp.StatusCode, Class: ClassifyStatus(resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, &FetchError{Source: src.ID, Class: ClassOther, Err: err}
	}
	f.logger.Debugf(providers.TypeFetch, "source %s: %d bytes", src.ID, len(body))
	return body, nil
}
