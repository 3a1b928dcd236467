package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/models"
)

// MemoryLedger keeps submission records in process. It backs development
// setups and tests; every accepted submission is retained until the retention
// job prunes it, same as the remote backends.
type MemoryLedger struct {
	mu       sync.Mutex
	records  map[string][]models.SubmissionRecord
	cooldown time.Duration
	now      func() time.Time
}

func NewMemoryLedger(cooldown time.Duration) *MemoryLedger {
	return &MemoryLedger{
		records:  make(map[string][]models.SubmissionRecord),
		cooldown: cooldown,
		now:      time.Now,
	}
}

func (l *MemoryLedger) Check(ctx context.Context, deviceID string) (models.CooldownStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, ok := l.mostRecentLocked(deviceID)
	if !ok {
		return models.CooldownStatus{}, nil
	}

	return statusAfter(last.SubmittedAt, l.now(), l.cooldown), nil
}

func (l *MemoryLedger) Submit(ctx context.Context, deviceID string, sub models.Submission) (models.SubmitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if last, ok := l.mostRecentLocked(deviceID); ok {
		if status := statusAfter(last.SubmittedAt, now, l.cooldown); status.InCooldown {
			return models.SubmitResult{
				Outcome:   models.SubmitRejected,
				Remaining: status.Remaining,
			}, nil
		}
	}

	record := models.SubmissionRecord{
		ID:          uuid.NewString(),
		DeviceID:    deviceID,
		SubmittedAt: now,
		Name:        sub.Name,
		MemberID:    sub.MemberID,
	}
	l.records[deviceID] = append(l.records[deviceID], record)

	return models.SubmitResult{
		Outcome:       models.SubmitAccepted,
		Record:        &record,
		CooldownUntil: now.Add(l.cooldown),
	}, nil
}

func (l *MemoryLedger) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed int64
	for deviceID, records := range l.records {
		kept := records[:0]
		for _, record := range records {
			if record.SubmittedAt.Before(olderThan) {
				removed++
				continue
			}
			kept = append(kept, record)
		}

		if len(kept) == 0 {
			delete(l.records, deviceID)
		} else {
			l.records[deviceID] = kept
		}
	}

	return removed, nil
}

func (l *MemoryLedger) Close() {}

// Count reports how many records a device currently has. Test hook.
func (l *MemoryLedger) Count(deviceID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records[deviceID])
}

func (l *MemoryLedger) mostRecentLocked(deviceID string) (models.SubmissionRecord, bool) {
	records := l.records[deviceID]
	if len(records) == 0 {
		return models.SubmissionRecord{}, false
	}

	most := records[0]
	for _, record := range records[1:] {
		if record.SubmittedAt.After(most.SubmittedAt) {
			most = record
		}
	}

	return most, true
}
