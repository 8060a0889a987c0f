package jobs

import (
	"context"
	"sync"
	"time"

	"skyline/opsboard/internal/logging"
)

// Backfiller recomputes stored canonical aircraft types.
type Backfiller interface {
	Backfill(ctx context.Context) (int, int, error)
}

// BackfillJob keeps canonical aircraft types in line with the mapping rules
// when rules change outside the API, for example by a direct table edit.
type BackfillJob struct {
	rules Backfiller

	mu      sync.Mutex
	running bool
	lastRun time.Time
}

func NewBackfillJob(rules Backfiller) *BackfillJob {
	return &BackfillJob{rules: rules}
}

// Run does one backfill pass. Overlapping calls return immediately.
func (j *BackfillJob) Run(ctx context.Context) error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		logging.Debug("Backfill already running, skipping")
		return nil
	}
	j.running = true
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.running = false
		j.lastRun = time.Now()
		j.mu.Unlock()
	}()

	start := time.Now()
	scanned, changed, err := j.rules.Backfill(ctx)
	if err != nil {
		logging.Error("Scheduled backfill failed", "error", err)
		return err
	}
	logging.Info("Scheduled backfill finished",
		"scanned", scanned,
		"changed", changed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// LastRun is the zero time until the first pass completes.
func (j *BackfillJob) LastRun() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastRun
}

// RunScheduled runs the backfill every interval until ctx is cancelled.
func (j *BackfillJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = j.Run(ctx)
		case <-ctx.Done():
			logging.Info("Scheduled backfill stopped")
			return
		}
	}
}
