// Package jobs holds the background jobs of the cargotrack server.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pkordes/cargotrack/backend/internal/domain"
	"github.com/pkordes/cargotrack/backend/internal/metrics"
)

// OverloadFinder lists trips whose cargo exceeds their vehicle's capacity.
// *service.CapacityEngine satisfies it.
type OverloadFinder interface {
	Overloaded(ctx context.Context) ([]domain.Space, error)
}

// CapacityAuditJob periodically looks for overloaded trips. The ledger never
// creates one, so any hit means the data was changed behind its back, for
// example a vehicle's capacity lowered directly in the database.
type CapacityAuditJob struct {
	finder  OverloadFinder
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
}

// NewCapacityAuditJob creates the audit job. Each run is bounded by timeout.
func NewCapacityAuditJob(finder OverloadFinder, timeout time.Duration, logger *slog.Logger) *CapacityAuditJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &CapacityAuditJob{
		finder:  finder,
		cron:    cron.New(),
		logger:  logger.With("component", "capacity_audit_job"),
		timeout: timeout,
	}
}

// Start schedules the audit with a standard cron spec or a descriptor such
// as "@every 5m", and starts the scheduler.
func (j *CapacityAuditJob) Start(schedule string) error {
	_, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()

		if _, err := j.Run(ctx); err != nil {
			j.logger.ErrorContext(ctx, "capacity audit failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("jobs.CapacityAuditJob.Start: schedule %q: %w", schedule, err)
	}

	j.cron.Start()
	j.logger.Info("capacity audit started", "schedule", schedule)
	return nil
}

// Stop stops the scheduler and waits for a running audit to finish.
func (j *CapacityAuditJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("capacity audit stopped")
}

// Run performs one audit and returns the number of overloaded trips.
// The overloaded-trips gauge is only updated when the audit succeeds.
func (j *CapacityAuditJob) Run(ctx context.Context) (int, error) {
	overloaded, err := j.finder.Overloaded(ctx)
	if err != nil {
		return 0, fmt.Errorf("jobs.CapacityAuditJob.Run: %w", err)
	}

	for _, s := range overloaded {
		j.logger.WarnContext(ctx, "trip over capacity",
			"trip_id", s.TripID,
			"capacity", s.Capacity,
			"used", s.Used,
		)
	}
	metrics.SetOverloadedTrips(len(overloaded))
	j.logger.DebugContext(ctx, "capacity audit finished", "overloaded", len(overloaded))
	return len(overloaded), nil
}
