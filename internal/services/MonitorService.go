package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"shiftwatch/internal/canonical"
	"shiftwatch/internal/extraction"
	"shiftwatch/internal/merge"
	"shiftwatch/internal/models"
	"shiftwatch/internal/notify"
	"shiftwatch/internal/providers"
	"shiftwatch/internal/store"
	"shiftwatch/internal/structures"
)

var (
	ErrCodeNotFound = errors.New("code not found")
	ErrNotEligible  = errors.New("code is not eligible for notification")
)

const (
	RunOutcomeSuccess = "success"
	RunOutcomeFailure = "failure"
)

type MonitorServiceInterface interface {
	Run(ctx context.Context) (*models.RunSummary, error)
	Resend(ctx context.Context, hash string) (*models.DeliveryAttempt, error)
	LatestRun(ctx context.Context) (*models.RunSummary, error)
	ListCodes(ctx context.Context) ([]models.CanonicalCode, error)
	ListDeliveries(ctx context.Context, limit int) ([]models.DeliveryAttempt, error)
}

// MonitorService runs one collection pass at a time: sources are fetched in
// configured order, merged into the store, and new eligible codes are
// announced.
type MonitorService struct {
	mu         sync.Mutex
	sources    []extraction.Source
	options    extraction.Options
	backfill   time.Duration
	canon      *canonical.Canonicalizer
	repo       store.RepositoryInterface
	fetcher    extraction.FetcherInterface
	dispatcher notify.DispatcherInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	now        func() time.Time
}

func NewMonitorService(
	conf *structures.Config,
	repo store.RepositoryInterface,
	fetcher extraction.FetcherInterface,
	dispatcher notify.DispatcherInterface,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) (*MonitorService, error) {
	sources, err := extraction.SourcesFromConfig(conf)
	if err != nil {
		return nil, err
	}
	return &MonitorService{
		sources:    sources,
		options:    extraction.Options{TableMarker: conf.Monitor.TableMarker},
		backfill:   time.Duration(conf.Monitor.BackfillDays) * 24 * time.Hour,
		canon:      canonical.NewCanonicalizer(conf.Monitor.Title),
		repo:       repo,
		fetcher:    fetcher,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		now:        time.Now,
	}, nil
}

// SetClock replaces the time source.
func (s *MonitorService) SetClock(now func() time.Time) {
	s.now = now
}

// Run performs one pass. Fetch failures are counted per source and the pass
// continues; any store failure aborts it and no summary is saved.
func (s *MonitorService) Run(ctx context.Context) (*models.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	summary, err := s.run(ctx, start)
	s.metrics.ObserveRunDuration(time.Since(start))
	if err != nil {
		s.metrics.IncRuns(RunOutcomeFailure)
		s.logger.Errorf(providers.TypeApp, "Run aborted: %s", err)
		return nil, err
	}
	s.metrics.IncRuns(RunOutcomeSuccess)
	return summary, nil
}

func (s *MonitorService) run(ctx context.Context, start time.Time) (*models.RunSummary, error) {
	summary := &models.RunSummary{
		RunID: uuid.NewString(),
		RanAt: start.UTC(),
	}

	var candidates []string
	seen := make(map[string]struct{})

	for _, src := range s.sources {
		summary.Sources = append(summary.Sources, src.ID)
		report := models.SourceReport{Source: src.ID}

		drafts, err := s.collect(ctx, src, &report)
		if err != nil {
			switch extraction.Classify(err) {
			case extraction.ClassRateLimited:
				summary.RateLimited++
			case extraction.ClassServerError:
				summary.ServerErrors++
			default:
				summary.Errors++
			}
			s.metrics.IncFetchErrors(src.ID, extraction.Classify(err).String())
			report.Error = err.Error()
			summary.SourceReports = append(summary.SourceReports, report)
			s.logger.Warnf(providers.TypeFetch, "Source %s skipped: %s", src.ID, err)
			continue
		}

		records, rejected := s.canon.CanonicalizeAll(drafts, src.ID, s.now())
		reduced := canonical.Reduce(records)
		report.Fetched = len(drafts)
		report.Rejected = rejected
		report.Accepted = len(reduced)

		for _, rec := range reduced {
			existing, err := s.repo.LoadCode(ctx, rec.Hash)
			if err != nil {
				return nil, err
			}
			res := merge.Merge(existing, rec, s.now())
			if err := s.repo.SaveCode(ctx, res.Record); err != nil {
				return nil, err
			}

			if res.Inserted {
				summary.NewCodes++
				report.Inserted++
			} else {
				report.Updated++
			}
			if _, ok := seen[rec.Hash]; res.Candidate && !ok {
				seen[rec.Hash] = struct{}{}
				candidates = append(candidates, rec.Hash)
			}
		}
		summary.SourceReports = append(summary.SourceReports, report)
		s.logger.Debugf(providers.TypeFetch, "Source %s: %d drafts, %d accepted, %d new", src.ID, report.Fetched, report.Accepted, report.Inserted)
	}

	sent, err := s.notify(ctx, candidates)
	if err != nil {
		return nil, err
	}
	summary.NotificationsSent = sent

	total, err := s.repo.CountCodes(ctx)
	if err != nil {
		return nil, err
	}
	summary.TotalCodes = total
	summary.DuplicatesSkipped = total - summary.NewCodes
	summary.Duration = s.now().Sub(start)

	if err := s.repo.SaveRunSummary(ctx, *summary); err != nil {
		return nil, err
	}

	s.metrics.SetCodesTotal(total)
	s.metrics.AddNewCodes(summary.NewCodes)
	s.logger.Infof(providers.TypeApp, "Run %s finished: total=%d new=%d sent=%d errors=%d rate_limited=%d server_errors=%d",
		summary.RunID, summary.TotalCodes, summary.NewCodes, summary.NotificationsSent, summary.Errors, summary.RateLimited, summary.ServerErrors)
	return summary, nil
}

// collect returns the drafts for src, from the network or from sample data
// when the source has no URL.
func (s *MonitorService) collect(ctx context.Context, src extraction.Source, report *models.SourceReport) ([]models.CollectedDraft, error) {
	if !src.Live() {
		report.Fallback = true
		s.logger.Debugf(providers.TypeFetch, "Source %s has no URL, using sample data", src.ID)
		return extraction.FallbackDrafts(src.ID), nil
	}
	raw, err := s.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	drafts, err := extraction.Extract(src.Kind, raw, s.options)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", src.ID, err)
	}
	return drafts, nil
}

// notify re-reads each candidate so the dispatched record reflects every
// source merged in this run, then records the outcome of each delivery.
func (s *MonitorService) notify(ctx context.Context, hashes []string) (int, error) {
	now := s.now()
	var batch []models.CanonicalCode
	for _, hash := range hashes {
		rec, err := s.repo.LoadCode(ctx, hash)
		if err != nil {
			return 0, err
		}
		if rec == nil || !notify.Eligible(*rec, now) || !s.withinBackfill(*rec, now) {
			continue
		}
		batch = append(batch, *rec)
	}
	if len(batch) == 0 {
		return 0, nil
	}
	return s.deliver(ctx, batch)
}

func (s *MonitorService) deliver(ctx context.Context, batch []models.CanonicalCode) (int, error) {
	sent := 0
	for _, attempt := range s.dispatcher.Dispatch(ctx, batch) {
		ok, err := s.record(ctx, attempt)
		if ok {
			sent++
		}
		if err != nil {
			return sent, err
		}
	}
	return sent, nil
}

func (s *MonitorService) withinBackfill(rec models.CanonicalCode, now time.Time) bool {
	if s.backfill <= 0 {
		return true
	}
	return !rec.FirstSeenAt.Before(now.Add(-s.backfill))
}

// Resend clears the notified timestamp of hash and dispatches it again.
func (s *MonitorService) Resend(ctx context.Context, hash string) (*models.DeliveryAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.repo.LoadCode(ctx, hash)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrCodeNotFound, hash)
	}

	now := s.now()
	cleared := merge.ClearNotified(*rec, now)
	if err := s.repo.SaveCode(ctx, cleared); err != nil {
		return nil, err
	}
	if !notify.Eligible(cleared, now) {
		return nil, fmt.Errorf("%w: %s", ErrNotEligible, hash)
	}

	attempts := s.dispatcher.Dispatch(ctx, []models.CanonicalCode{cleared})
	if len(attempts) == 0 {
		return nil, fmt.Errorf("resend %s: no delivery attempt", hash)
	}
	if _, err := s.record(ctx, attempts[0]); err != nil {
		return nil, err
	}
	s.logger.Infof(providers.TypeDispatch, "Resend of %s finished with %s", cleared.Code, attempts[0].Outcome)
	return &attempts[0], nil
}

// record appends attempt to the delivery log and, when it was sent, stamps
// the code as notified. The boolean reports a successful send.
func (s *MonitorService) record(ctx context.Context, attempt models.DeliveryAttempt) (bool, error) {
	if err := s.repo.AppendDelivery(ctx, attempt); err != nil {
		return false, err
	}
	s.metrics.IncDeliveries(string(attempt.Outcome))
	if attempt.Outcome != models.OutcomeSent {
		return false, nil
	}
	rec, err := s.repo.LoadCode(ctx, attempt.CodeHash)
	if err != nil || rec == nil {
		return true, err
	}
	return true, s.repo.SaveCode(ctx, merge.WithNotified(*rec, attempt.AttemptedAt))
}

func (s *MonitorService) LatestRun(ctx context.Context) (*models.RunSummary, error) {
	return s.repo.LoadLatestRunSummary(ctx)
}

func (s *MonitorService) ListCodes(ctx context.Context) ([]models.CanonicalCode, error) {
	return s.repo.ListCodes(ctx)
}

func (s *MonitorService) ListDeliveries(ctx context.Context, limit int) ([]models.DeliveryAttempt, error) {
	return s.repo.ListDeliveries(ctx, limit)
}
