package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/middlewares"
)

// ThrottleCleanupJob drops idle rate-limiter buckets. The buckets are
// per-instance state, so every instance runs its own cleanup regardless of
// leadership.
type ThrottleCleanupJob struct {
	store    *middlewares.ThrottleStore
	interval time.Duration
	logger   *slog.Logger
}

func NewThrottleCleanupJob(store *middlewares.ThrottleStore, interval time.Duration, logger *slog.Logger) *ThrottleCleanupJob {
	return &ThrottleCleanupJob{
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

func (j *ThrottleCleanupJob) Name() string {
	return JobNameThrottleCleanup
}

func (j *ThrottleCleanupJob) RequiresLeadership() bool {
	return false
}

func (j *ThrottleCleanupJob) Interval() time.Duration {
	return j.interval
}

func (j *ThrottleCleanupJob) Run(ctx context.Context) error {
	if j.interval <= 0 {
		return fmt.Errorf("throttle cleanup job interval must be positive")
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			j.store.Cleanup(now)
		}
	}
}
