package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/roylee0704/gron"
	"go.uber.org/atomic"

	"shiftwatch/internal/models"
	"shiftwatch/internal/providers"
	"shiftwatch/internal/services"
	"shiftwatch/internal/store"
	"shiftwatch/internal/structures"
)

var ErrRunInProgress = errors.New("a run is already in progress")

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
	RunNow(ctx context.Context) (*models.RunSummary, error)
	Trigger() error
	Running() bool
}

type Scheduler struct {
	config   *structures.Config
	logger   providers.Logger
	service  services.MonitorServiceInterface
	repo     store.RepositoryInterface
	migrator *store.Migrator
	cron     *gron.Cron
	runMu    sync.Mutex
	persist  sync.Mutex
	running  atomic.Bool
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.MonitorServiceInterface, repo store.RepositoryInterface, migrator *store.Migrator) SchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		config:   config,
		logger:   logger,
		service:  service,
		repo:     repo,
		migrator: migrator,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(gron.Every(s.config.Monitor.Interval), func() {
		if _, err := s.RunNow(s.ctx); errors.Is(err, ErrRunInProgress) {
			s.logger.Warnf(providers.TypeApp, "Previous run still in progress, skipping tick")
		}
	})

	if interval := s.config.Store.SaveInterval; interval > 0 {
		s.cron.AddFunc(gron.Every(interval), func() {
			_ = s.Persist()
		})
	}

	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "Scheduler started, run interval %s", s.config.Monitor.Interval)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.cancel()
	// wait for an in-flight run
	s.runMu.Lock()
	defer s.runMu.Unlock()
}

// Restore brings the store up to date before the first run.
func (s *Scheduler) Restore() error {
	if s.migrator == nil {
		return nil
	}
	applied, err := s.migrator.Run(s.ctx)
	if err != nil {
		return err
	}
	for _, name := range applied {
		s.logger.Infof(providers.TypeStore, "Migration %s applied", name)
	}
	return nil
}

func (s *Scheduler) Persist() error {
	s.persist.Lock()
	defer s.persist.Unlock()

	if err := s.repo.Flush(); err != nil {
		s.logger.Errorf(providers.TypeStore, "Error while persisting data: %s", err)
		return err
	}
	return nil
}

// RunNow starts a run unless one is already in progress, in which case it
// returns ErrRunInProgress immediately.
func (s *Scheduler) RunNow(ctx context.Context) (*models.RunSummary, error) {
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()
	return s.execute(ctx)
}

// Trigger starts a run in the background on the scheduler's own context.
func (s *Scheduler) Trigger() error {
	if !s.runMu.TryLock() {
		return ErrRunInProgress
	}
	go func() {
		defer s.runMu.Unlock()
		_, _ = s.execute(s.ctx)
	}()
	return nil
}

func (s *Scheduler) execute(ctx context.Context) (*models.RunSummary, error) {
	s.running.Store(true)
	defer s.running.Store(false)

	start := time.Now()
	s.logger.Infof(providers.TypeApp, "Run started")
	summary, err := s.service.Run(ctx)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Run failed after %s: %s", time.Since(start), err)
		return nil, err
	}
	return summary, nil
}

func (s *Scheduler) Running() bool {
	return s.running.Load()
}
