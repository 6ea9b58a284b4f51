package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/PabloGalante/fermi-notifier/internal/observability"
)

// Task is the unit of work a schedule triggers.
type Task func(ctx context.Context) error

// Scheduler triggers a task on a cron spec, as an in-process stand-in for
// an external scheduler calling POST /.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a Scheduler with its own cron instance.
func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Schedule registers task under the standard five-field cron spec.
// Every run gets a fresh request id and a background context.
func (s *Scheduler) Schedule(spec string, task Task) error {
	_, err := s.cron.AddFunc(spec, func() {
		runID := uuid.NewString()
		ctx := observability.WithRequestID(context.Background(), runID)
		log := observability.LoggerFromContext(ctx)

		log.Info("scheduled run triggered", "spec", spec)
		if err := task(ctx); err != nil {
			log.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("adding cron entry %q: %w", spec, err)
	}
	observability.Logger().Info("fermi run scheduled", "spec", spec)
	return nil
}

// Start begins the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and returns a context that is done once
// running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Entries reports how many schedules are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
