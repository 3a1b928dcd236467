package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/config"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/ledger"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/metrics"
)

// RetentionJob prunes submission records that have aged out of the retention
// window. Config validation guarantees retention exceeds the cooldown, so a
// purge can never remove the record backing an active cooldown.
type RetentionJob struct {
	cooldowns ledger.Ledger
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger

	now func() time.Time
}

func NewRetentionJob(cooldowns ledger.Ledger, cfg *config.Config, logger *slog.Logger) *RetentionJob {
	return &RetentionJob{
		cooldowns: cooldowns,
		retention: cfg.Ledger.Retention,
		interval:  cfg.Ledger.CleanupInterval,
		logger:    logger,
		now:       time.Now,
	}
}

func (j *RetentionJob) Name() string {
	return JobNameLedgerRetention
}

func (j *RetentionJob) RequiresLeadership() bool {
	return true // Only one instance should prune a shared backend
}

func (j *RetentionJob) Interval() time.Duration {
	return j.interval
}

func (j *RetentionJob) Run(ctx context.Context) error {
	if j.interval <= 0 {
		return fmt.Errorf("retention job interval must be positive")
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	if err := j.purgeExpired(ctx); err != nil && !errors.Is(err, context.Canceled) {
		j.logger.Error("initial retention purge failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := j.purgeExpired(ctx); err != nil && !errors.Is(err, context.Canceled) {
				j.logger.Error("retention purge failed", "error", err)
			}
		}
	}
}

func (j *RetentionJob) purgeExpired(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)

	removed, err := j.cooldowns.DeleteExpired(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete expired records: %w", err)
	}

	metrics.RetentionRowsPurged.Add(float64(removed))

	if removed > 0 {
		j.logger.Info("purged expired submission records", "count", removed, "older_than", cutoff)
	}

	return nil
}
