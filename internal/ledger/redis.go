package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/models"
)

// RedisLedger keeps the most recent accepted submission per device under a
// key whose TTL is the retention window. It is the lightweight shared
// backend: enough state to enforce the cooldown across instances, without the
// full append-only history the postgres backend keeps.
type RedisLedger struct {
	client    *redis.Client
	cooldown  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewRedisLedger(client *redis.Client, cooldown, retention time.Duration) *RedisLedger {
	return &RedisLedger{
		client:    client,
		cooldown:  cooldown,
		retention: retention,
		now:       time.Now,
	}
}

func (l *RedisLedger) key(deviceID string) string {
	return fmt.Sprintf("cooldown:device:%s", deviceID)
}

func (l *RedisLedger) Check(ctx context.Context, deviceID string) (models.CooldownStatus, error) {
	record, ok, err := l.mostRecent(ctx, deviceID)
	if err != nil {
		return models.CooldownStatus{}, err
	}
	if !ok {
		return models.CooldownStatus{}, nil
	}

	return statusAfter(record.SubmittedAt, l.now(), l.cooldown), nil
}

func (l *RedisLedger) Submit(ctx context.Context, deviceID string, sub models.Submission) (models.SubmitResult, error) {
	record, ok, err := l.mostRecent(ctx, deviceID)
	if err != nil {
		return models.SubmitResult{Outcome: models.SubmitFailed}, err
	}

	now := l.now()

	if ok {
		if status := statusAfter(record.SubmittedAt, now, l.cooldown); status.InCooldown {
			return models.SubmitResult{
				Outcome:   models.SubmitRejected,
				Remaining: status.Remaining,
			}, nil
		}
	}

	fresh := models.SubmissionRecord{
		ID:          uuid.NewString(),
		DeviceID:    deviceID,
		SubmittedAt: now,
		Name:        sub.Name,
		MemberID:    sub.MemberID,
	}

	payload, err := json.Marshal(fresh)
	if err != nil {
		return models.SubmitResult{Outcome: models.SubmitFailed}, fmt.Errorf("failed to marshal submission record: %w", err)
	}

	if err := l.client.Set(ctx, l.key(deviceID), payload, l.retention).Err(); err != nil {
		return models.SubmitResult{Outcome: models.SubmitFailed}, fmt.Errorf("failed to store submission record: %w", err)
	}

	return models.SubmitResult{
		Outcome:       models.SubmitAccepted,
		Record:        &fresh,
		CooldownUntil: now.Add(l.cooldown),
	}, nil
}

// DeleteExpired is a no-op for this backend: retention is delegated to the
// per-key TTL set on submit.
func (l *RedisLedger) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

func (l *RedisLedger) Close() {
	_ = l.client.Close()
}

func (l *RedisLedger) mostRecent(ctx context.Context, deviceID string) (models.SubmissionRecord, bool, error) {
	data, err := l.client.Get(ctx, l.key(deviceID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.SubmissionRecord{}, false, nil
		}
		return models.SubmissionRecord{}, false, fmt.Errorf("failed to read submission record: %w", err)
	}

	var record models.SubmissionRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return models.SubmissionRecord{}, false, fmt.Errorf("failed to unmarshal submission record: %w", err)
	}

	return record, true, nil
}
