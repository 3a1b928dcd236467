package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/config"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/models"
)

// PostgresLedger keeps the full append-only submission history. It is the
// backend for deployments that want an audit trail beyond the retention
// window semantics the other backends share.
type PostgresLedger struct {
	pool     *pgxpool.Pool
	cooldown time.Duration
	now      func() time.Time
}

func NewPostgresLedger(ctx context.Context, cfg *config.Config) (*PostgresLedger, error) {
	pool, err := pgxpool.New(ctx, connectionStringFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	l := &PostgresLedger{
		pool:     pool,
		cooldown: cfg.Ledger.Cooldown,
		now:      time.Now,
	}

	if err := l.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return l, nil
}

func connectionStringFromConfig(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		cfg.Storage.Host,
		cfg.Storage.Port,
		cfg.Storage.Username,
		cfg.Storage.Password,
		cfg.Storage.Database,
	)
}

func (l *PostgresLedger) ensureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS submissions (
			id UUID PRIMARY KEY,
			device_id TEXT NOT NULL,
			submitted_at TIMESTAMPTZ NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			member_id TEXT NOT NULL DEFAULT ''
		)
	`

	if _, err := l.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create submissions table: %w", err)
	}

	indexQuery := `
		CREATE INDEX IF NOT EXISTS idx_submissions_device_recency
		ON submissions (device_id, submitted_at DESC)
	`

	if _, err := l.pool.Exec(ctx, indexQuery); err != nil {
		return fmt.Errorf("failed to create submissions index: %w", err)
	}

	return nil
}

func (l *PostgresLedger) Check(ctx context.Context, deviceID string) (models.CooldownStatus, error) {
	query := `
		SELECT submitted_at
		FROM submissions
		WHERE device_id = $1
		ORDER BY submitted_at DESC
		LIMIT 1
	`

	var submittedAt time.Time
	err := l.pool.QueryRow(ctx, query, deviceID).Scan(&submittedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CooldownStatus{}, nil
		}
		return models.CooldownStatus{}, fmt.Errorf("failed to read latest submission: %w", err)
	}

	return statusAfter(submittedAt, l.now(), l.cooldown), nil
}

func (l *PostgresLedger) Submit(ctx context.Context, deviceID string, sub models.Submission) (models.SubmitResult, error) {
	status, err := l.Check(ctx, deviceID)
	if err != nil {
		return models.SubmitResult{Outcome: models.SubmitFailed}, err
	}

	if status.InCooldown {
		return models.SubmitResult{
			Outcome:   models.SubmitRejected,
			Remaining: status.Remaining,
		}, nil
	}

	now := l.now()

	record := models.SubmissionRecord{
		ID:          uuid.NewString(),
		DeviceID:    deviceID,
		SubmittedAt: now,
		Name:        sub.Name,
		MemberID:    sub.MemberID,
	}

	query := `
		INSERT INTO submissions (id, device_id, submitted_at, name, member_id)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := l.pool.Exec(ctx, query,
		record.ID, record.DeviceID, record.SubmittedAt, record.Name, record.MemberID); err != nil {
		return models.SubmitResult{Outcome: models.SubmitFailed}, fmt.Errorf("failed to insert submission: %w", err)
	}

	return models.SubmitResult{
		Outcome:       models.SubmitAccepted,
		Record:        &record,
		CooldownUntil: now.Add(l.cooldown),
	}, nil
}

func (l *PostgresLedger) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `
		DELETE FROM submissions
		WHERE submitted_at < $1
	`

	result, err := l.pool.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired submissions: %w", err)
	}

	return result.RowsAffected(), nil
}

func (l *PostgresLedger) Close() {
	l.pool.Close()
}
