package ledger

import (
	"context"
	"time"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/metrics"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/models"
)

// Instrument wraps a backend so checks, submissions and latency show up in
// Prometheus under the given backend label.
func Instrument(backend string, inner Ledger) Ledger {
	return &instrumentedLedger{backend: backend, inner: inner}
}

type instrumentedLedger struct {
	backend string
	inner   Ledger
}

func (l *instrumentedLedger) Check(ctx context.Context, deviceID string) (models.CooldownStatus, error) {
	start := time.Now()
	status, err := l.inner.Check(ctx, deviceID)
	metrics.LedgerOperationDuration.WithLabelValues(l.backend, metrics.LedgerOperationCheck).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.LedgerChecks.WithLabelValues(l.backend, metrics.CheckResultError).Inc()
	case status.InCooldown:
		metrics.LedgerChecks.WithLabelValues(l.backend, metrics.CheckResultCooldown).Inc()
	default:
		metrics.LedgerChecks.WithLabelValues(l.backend, metrics.CheckResultClear).Inc()
	}

	return status, err
}

func (l *instrumentedLedger) Submit(ctx context.Context, deviceID string, sub models.Submission) (models.SubmitResult, error) {
	start := time.Now()
	result, err := l.inner.Submit(ctx, deviceID, sub)
	metrics.LedgerOperationDuration.WithLabelValues(l.backend, metrics.LedgerOperationSubmit).Observe(time.Since(start).Seconds())

	outcome := result.Outcome
	if err != nil && outcome == "" {
		outcome = models.SubmitFailed
	}
	metrics.LedgerSubmissions.WithLabelValues(l.backend, string(outcome)).Inc()

	return result, err
}

func (l *instrumentedLedger) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	start := time.Now()
	removed, err := l.inner.DeleteExpired(ctx, olderThan)
	metrics.LedgerOperationDuration.WithLabelValues(l.backend, metrics.LedgerOperationDeleteExpired).Observe(time.Since(start).Seconds())

	return removed, err
}

func (l *instrumentedLedger) Close() {
	l.inner.Close()
}
