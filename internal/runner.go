package internal

import (
	"context"

	"shiftwatch/internal/models"
	"shiftwatch/internal/providers"
	"shiftwatch/internal/scheduler"
	"shiftwatch/internal/services"
)

// Runner drives single operations from the command line without the HTTP
// server.
type Runner struct {
	service   services.MonitorServiceInterface
	scheduler scheduler.SchedulerInterface
	logger    providers.Logger
}

func NewRunner(service services.MonitorServiceInterface, scheduler scheduler.SchedulerInterface, logger providers.Logger) *Runner {
	return &Runner{service: service, scheduler: scheduler, logger: logger}
}

func (r *Runner) RunOnce(ctx context.Context) (*models.RunSummary, error) {
	if err := r.scheduler.Restore(); err != nil {
		return nil, err
	}
	defer r.persist()
	return r.scheduler.RunNow(ctx)
}

func (r *Runner) Resend(ctx context.Context, hash string) (*models.DeliveryAttempt, error) {
	if err := r.scheduler.Restore(); err != nil {
		return nil, err
	}
	defer r.persist()
	return r.service.Resend(ctx, hash)
}

func (r *Runner) persist() {
	if err := r.scheduler.Persist(); err != nil {
		r.logger.Errorf(providers.TypeStore, "Persist after command: %s", err)
	}
}
