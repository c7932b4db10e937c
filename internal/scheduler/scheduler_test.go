package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftwatch/internal/models"
	"shiftwatch/internal/store"
	"shiftwatch/internal/structures"
	"shiftwatch/internal/testutil"
)

type stubService struct {
	mu      sync.Mutex
	runs    int
	release chan struct{}
	started chan struct{}
	err     error
}

func (s *stubService) Run(ctx context.Context) (*models.RunSummary, error) {
	s.mu.Lock()
	s.runs++
	s.mu.Unlock()
	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &models.RunSummary{RunID: "run"}, nil
}

func (s *stubService) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *stubService) Resend(context.Context, string) (*models.DeliveryAttempt, error) {
	return nil, nil
}
func (s *stubService) LatestRun(context.Context) (*models.RunSummary, error) { return nil, nil }
func (s *stubService) ListCodes(context.Context) ([]models.CanonicalCode, error) {
	return nil, nil
}
func (s *stubService) ListDeliveries(context.Context, int) ([]models.DeliveryAttempt, error) {
	return nil, nil
}

type flushRepo struct {
	store.RepositoryInterface
	flushes int
	err     error
}

func (f *flushRepo) Flush() error {
	f.flushes++
	return f.err
}

func testConfig() *structures.Config {
	return &structures.Config{
		Monitor: structures.MonitorConfig{Interval: time.Second},
	}
}

func TestScheduler_RunNow(t *testing.T) {
	svc := &stubService{}
	s := NewScheduler(testConfig(), &testutil.MockLogger{}, svc, &flushRepo{}, nil)

	summary, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run", summary.RunID)
	assert.Equal(t, 1, svc.Runs())
	assert.False(t, s.Running())
}

func TestScheduler_RunNowDoesNotOverlap(t *testing.T) {
	svc := &stubService{release: make(chan struct{}), started: make(chan struct{}, 1)}
	s := NewScheduler(testConfig(), &testutil.MockLogger{}, svc, &flushRepo{}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.RunNow(context.Background())
		done <- err
	}()
	<-svc.started

	assert.True(t, s.Running())
	_, err := s.RunNow(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(svc.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, svc.Runs())
	assert.False(t, s.Running())
}

func TestScheduler_RunNowPropagatesError(t *testing.T) {
	boom := errors.New("store down")
	logger := &testutil.MockLogger{}
	s := NewScheduler(testConfig(), logger, &stubService{err: boom}, &flushRepo{}, nil)

	_, err := s.RunNow(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, logger.Count("error"))
}

func TestScheduler_Persist(t *testing.T) {
	repo := &flushRepo{}
	s := NewScheduler(testConfig(), &testutil.MockLogger{}, &stubService{}, repo, nil)
	require.NoError(t, s.Persist())
	assert.Equal(t, 1, repo.flushes)

	repo.err = errors.New("disk full")
	assert.Error(t, s.Persist())
}

func TestScheduler_Restore(t *testing.T) {
	kv := store.NewMemoryKV()
	applied := 0
	migrator := store.NewMigrator(kv, &testutil.MockLogger{}, store.Migration{
		Name:  "noop",
		Apply: func(context.Context, store.KV) error { applied++; return nil },
	})
	s := NewScheduler(testConfig(), &testutil.MockLogger{}, &stubService{}, &flushRepo{}, migrator)

	require.NoError(t, s.Restore())
	require.NoError(t, s.Restore())
	assert.Equal(t, 1, applied)

	assert.NoError(t, NewScheduler(testConfig(), &testutil.MockLogger{}, &stubService{}, &flushRepo{}, nil).Restore())
}

func TestScheduler_InitTicks(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a real tick")
	}
	svc := &stubService{}
	s := NewScheduler(testConfig(), &testutil.MockLogger{}, svc, &flushRepo{}, nil)
	s.Init()
	defer s.Stop()

	assert.Eventually(t, func() bool { return svc.Runs() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_StopCancelsInFlightRun(t *testing.T) {
	svc := &stubService{release: make(chan struct{}), started: make(chan struct{}, 1)}
	s := NewScheduler(testConfig(), &testutil.MockLogger{}, svc, &flushRepo{}, nil).(*Scheduler)

	done := make(chan error, 1)
	go func() {
		_, err := s.RunNow(s.ctx)
		done <- err
	}()
	<-svc.started

	s.Stop()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestScheduler_Trigger(t *testing.T) {
	svc := &stubService{release: make(chan struct{}), started: make(chan struct{}, 1)}
	s := NewScheduler(testConfig(), &testutil.MockLogger{}, svc, &flushRepo{}, nil)

	require.NoError(t, s.Trigger())
	<-svc.started
	assert.ErrorIs(t, s.Trigger(), ErrRunInProgress)

	close(svc.release)
	assert.Eventually(t, func() bool { return !s.Running() }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return s.Trigger() == nil }, time.Second, 10*time.Millisecond)
	s.Stop()
}
