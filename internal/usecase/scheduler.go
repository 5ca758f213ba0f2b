package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/vrindachawla1992/amex-ai-weekly-digest/internal/ports"
)

// Scheduler wires the cron-like driver with the pipeline, turning the
// single-batch run into a recurring digest.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the provided scheduler driver. Each
// trigger executes one independent batch run; a failed run never stops the
// schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		summary, err := s.pipeline.Run(ctx)
		if err != nil && s.logger != nil {
			s.logger.Error("scheduled run failed",
				"trigger", trigger.Format(time.RFC3339), "run_id", summary.RunID, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
