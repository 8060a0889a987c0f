package jobs

import (
	"context"
	"time"

	"skyline/opsboard/internal/logging"
)

// InitializeJobs starts the scheduled jobs. A zero interval leaves the
// backfill disabled and returns nil.
func InitializeJobs(ctx context.Context, rules Backfiller, backfillInterval time.Duration) *BackfillJob {
	if backfillInterval <= 0 {
		return nil
	}
	job := NewBackfillJob(rules)
	go job.RunScheduled(ctx, backfillInterval)
	logging.Info("Scheduled backfill enabled", "interval", backfillInterval.String())
	return job
}
