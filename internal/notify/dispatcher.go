package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"shiftwatch/internal/models"
	"shiftwatch/internal/providers"
	"shiftwatch/internal/structures"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseBackoff = 1000 * time.Millisecond

	ReasonDryRun        = "dry-run"
	ReasonNotConfigured = "not configured"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type Settings struct {
	URL           string
	Live          bool
	Destination   string
	Workers       int
	RatePerSecond float64
	MaxAttempts   int
	BaseBackoff   time.Duration
}

type DispatcherInterface interface {
	Dispatch(ctx context.Context, records []models.CanonicalCode) []models.DeliveryAttempt
}

type Dispatcher struct {
	settings Settings
	client   *http.Client
	limiter  *rate.Limiter
	sleep    Sleeper
	now      func() time.Time
	logger   providers.Logger
}

func NewDispatcher(conf *structures.Config, logger providers.Logger) DispatcherInterface {
	timeout := conf.Webhook.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return New(Settings{
		URL:           conf.Webhook.URL,
		Live:          conf.Monitor.Live,
		Destination:   conf.Webhook.Destination,
		Workers:       conf.Webhook.Workers,
		RatePerSecond: conf.Webhook.RatePerSecond,
	}, &http.Client{Timeout: timeout}, logger)
}

func New(settings Settings, client *http.Client, logger providers.Logger) *Dispatcher {
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = DefaultMaxAttempts
	}
	if settings.BaseBackoff <= 0 {
		settings.BaseBackoff = DefaultBaseBackoff
	}
	if settings.Workers <= 0 {
		settings.Workers = 1
	}
	if settings.Destination == "" {
		settings.Destination = "webhook"
	}
	d := &Dispatcher{
		settings: settings,
		client:   client,
		sleep:    contextSleep,
		now:      time.Now,
		logger:   logger,
	}
	if settings.RatePerSecond > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(settings.RatePerSecond), 1)
	}
	return d
}

// SetSleeper replaces the backoff wait, mainly for tests.
func (d *Dispatcher) SetSleeper(s Sleeper) {
	d.sleep = s
}

// Dispatch delivers every record and returns exactly one terminal attempt
// per record, in input order. Records are delivered concurrently up to the
// configured worker count; retries of a single record stay sequential.
func (d *Dispatcher) Dispatch(ctx context.Context, records []models.CanonicalCode) []models.DeliveryAttempt {
	results := make([]models.DeliveryAttempt, len(records))

	var g errgroup.Group
	g.SetLimit(d.settings.Workers)
	for i := range records {
		i := i
		g.Go(func() error {
			results[i] = d.deliver(ctx, records[i])
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (d *Dispatcher) deliver(ctx context.Context, rec models.CanonicalCode) models.DeliveryAttempt {
	if !d.settings.Live {
		return d.skipped(rec, 0, nil, ReasonDryRun)
	}
	if d.settings.URL == "" {
		return d.skipped(rec, 0, nil, ReasonNotConfigured)
	}

	body, err := BuildPayload(rec)
	if err != nil {
		return d.skipped(rec, 0, nil, fmt.Sprintf("encode payload: %s", err))
	}

	maxAttempts := d.settings.MaxAttempts
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tries := attempt + 1
		final := tries == maxAttempts

		if d.limiter != nil {
			if err := d.limiter.Wait(ctx); err != nil {
				return d.skipped(rec, attempt, nil, err.Error())
			}
		}

		status, retryAfter, err := d.post(ctx, body)
		if err != nil {
			d.logger.Warnf(providers.TypeDispatch, "Webhook attempt %d for %s failed: %s", tries, rec.Code, err)
			if final || ctx.Err() != nil {
				return d.skipped(rec, tries, nil, err.Error())
			}
			if serr := d.sleep(ctx, d.backoff(attempt)); serr != nil {
				return d.skipped(rec, tries, nil, serr.Error())
			}
			continue
		}

		switch {
		case status >= 200 && status < 300:
			d.logger.Infof(providers.TypeDispatch, "Announced %s (attempt %d)", rec.Code, tries)
			return d.attempt(rec, models.OutcomeSent, tries, &status, "")
		case status == http.StatusTooManyRequests:
			if final {
				return d.skipped(rec, tries, &status, "HTTP 429")
			}
			wait := ParseRetryAfter(retryAfter, d.now())
			d.logger.Warnf(providers.TypeDispatch, "Webhook rate limited for %s, retrying in %s", rec.Code, wait)
			if serr := d.sleep(ctx, wait); serr != nil {
				return d.skipped(rec, tries, &status, serr.Error())
			}
		case status >= 500:
			if final {
				return d.skipped(rec, tries, &status, fmt.Sprintf("HTTP %d", status))
			}
			wait := d.backoff(attempt)
			d.logger.Warnf(providers.TypeDispatch, "Webhook returned %d for %s, retrying in %s", status, rec.Code, wait)
			if serr := d.sleep(ctx, wait); serr != nil {
				return d.skipped(rec, tries, &status, serr.Error())
			}
		default:
			return d.skipped(rec, tries, &status, fmt.Sprintf("HTTP %d", status))
		}
	}

	// unreachable while MaxAttempts > 0
	return d.skipped(rec, maxAttempts, nil, "attempts exhausted")
}

func (d *Dispatcher) backoff(attempt int) time.Duration {
	return d.settings.BaseBackoff << attempt
}

func (d *Dispatcher) post(ctx context.Context, body []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.settings.URL, bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return resp.StatusCode, resp.Header.Get("Retry-After"), nil
}

func (d *Dispatcher) skipped(rec models.CanonicalCode, tries int, status *int, reason string) models.DeliveryAttempt {
	if tries > 0 {
		d.logger.Warnf(providers.TypeDispatch, "Skipped %s after %d attempt(s): %s", rec.Code, tries, reason)
	}
	return d.attempt(rec, models.OutcomeSkipped, tries, status, reason)
}

func (d *Dispatcher) attempt(rec models.CanonicalCode, outcome models.DeliveryOutcome, tries int, status *int, reason string) models.DeliveryAttempt {
	return models.DeliveryAttempt{
		ID:          uuid.NewString(),
		CodeHash:    rec.Hash,
		Code:        rec.Code,
		Outcome:     outcome,
		Destination: d.settings.Destination,
		AttemptedAt: d.now().UTC(),
		Attempts:    tries,
		StatusCode:  status,
		Error:       reason,
	}
}
