// Package ledger tracks accepted submissions per device and answers whether a
// device is still inside its cooldown window.
package ledger

import (
	"context"
	"time"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/models"
)

//go:generate mockgen -source=ledger.go -destination=../mocks/ledger.go -package=mocks

// Ledger is the pluggable cooldown backend. Check is read-only and safe to
// poll. Submit re-checks and then appends, reporting the outcome through the
// explicit tag on models.SubmitResult: a rejection is policy, an error is
// infrastructure, and callers must not conflate the two.
//
// No lock spans the re-check and the append inside Submit; two
// near-simultaneous submits for one device can both pass the check. Accepted
// for this threat model.
type Ledger interface {
	Check(ctx context.Context, deviceID string) (models.CooldownStatus, error)
	Submit(ctx context.Context, deviceID string, sub models.Submission) (models.SubmitResult, error)

	// DeleteExpired removes records whose submitted_at is before olderThan.
	// Runs out-of-band (retention job), never in the request path.
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)

	Close()
}

// statusAfter derives the cooldown state from the most recent accepted
// submission. Remaining is clamped at zero.
func statusAfter(lastSubmittedAt, now time.Time, cooldown time.Duration) models.CooldownStatus {
	remaining := cooldown - now.Sub(lastSubmittedAt)
	if remaining <= 0 {
		return models.CooldownStatus{}
	}

	return models.CooldownStatus{
		InCooldown: true,
		Remaining:  remaining,
	}
}
