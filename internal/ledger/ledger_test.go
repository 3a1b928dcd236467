package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/models"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestLedger(cooldown time.Duration) (*MemoryLedger, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	l := NewMemoryLedger(cooldown)
	l.now = clock.Now

	return l, clock
}

func TestMemoryLedgerCheckUnknownDevice(t *testing.T) {
	l, _ := newTestLedger(30 * time.Minute)

	status, err := l.Check(context.Background(), "device-a")
	require.NoError(t, err)

	assert.False(t, status.InCooldown)
	assert.Zero(t, status.Remaining)
}

func TestMemoryLedgerSubmitStartsCooldown(t *testing.T) {
	l, clock := newTestLedger(30 * time.Minute)
	ctx := context.Background()

	result, err := l.Submit(ctx, "device-a", models.Submission{Name: "Ada", MemberID: "a-1"})
	require.NoError(t, err)

	assert.Equal(t, models.SubmitAccepted, result.Outcome)
	require.NotNil(t, result.Record)
	assert.NotEmpty(t, result.Record.ID)
	assert.Equal(t, "device-a", result.Record.DeviceID)
	assert.Equal(t, "Ada", result.Record.Name)
	assert.Equal(t, clock.Now().Add(30*time.Minute), result.CooldownUntil)

	status, err := l.Check(ctx, "device-a")
	require.NoError(t, err)
	assert.True(t, status.InCooldown)
	assert.Equal(t, 30*time.Minute, status.Remaining)

	clock.Advance(10 * time.Minute)

	status, err = l.Check(ctx, "device-a")
	require.NoError(t, err)
	assert.True(t, status.InCooldown)
	assert.Equal(t, 20*time.Minute, status.Remaining)
}

func TestMemoryLedgerRemainingNeverIncreases(t *testing.T) {
	l, clock := newTestLedger(30 * time.Minute)
	ctx := context.Background()

	_, err := l.Submit(ctx, "device-a", models.Submission{})
	require.NoError(t, err)

	previous := 30*time.Minute + time.Second
	for i := 0; i < 12; i++ {
		status, err := l.Check(ctx, "device-a")
		require.NoError(t, err)

		assert.LessOrEqual(t, status.Remaining, previous)
		previous = status.Remaining

		clock.Advance(3 * time.Minute)
	}

	status, err := l.Check(ctx, "device-a")
	require.NoError(t, err)
	assert.False(t, status.InCooldown)
	assert.Zero(t, status.Remaining)
}

func TestMemoryLedgerRejectsSubmitDuringCooldown(t *testing.T) {
	l, clock := newTestLedger(30 * time.Minute)
	ctx := context.Background()

	first, err := l.Submit(ctx, "device-a", models.Submission{})
	require.NoError(t, err)
	require.Equal(t, models.SubmitAccepted, first.Outcome)

	clock.Advance(5 * time.Minute)

	second, err := l.Submit(ctx, "device-a", models.Submission{})
	require.NoError(t, err)

	assert.Equal(t, models.SubmitRejected, second.Outcome)
	assert.Equal(t, 25*time.Minute, second.Remaining)
	assert.Nil(t, second.Record)
	assert.Equal(t, 1, l.Count("device-a"), "rejected submit must not append a record")
}

func TestMemoryLedgerAllowsResubmitAfterCooldown(t *testing.T) {
	l, clock := newTestLedger(30 * time.Minute)
	ctx := context.Background()

	_, err := l.Submit(ctx, "device-a", models.Submission{})
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)

	status, err := l.Check(ctx, "device-a")
	require.NoError(t, err)
	assert.False(t, status.InCooldown, "cooldown must end once the full window has elapsed")

	result, err := l.Submit(ctx, "device-a", models.Submission{})
	require.NoError(t, err)
	assert.Equal(t, models.SubmitAccepted, result.Outcome)
	assert.Equal(t, 2, l.Count("device-a"))
}

func TestMemoryLedgerCooldownIsPerDevice(t *testing.T) {
	l, _ := newTestLedger(30 * time.Minute)
	ctx := context.Background()

	_, err := l.Submit(ctx, "device-a", models.Submission{})
	require.NoError(t, err)

	status, err := l.Check(ctx, "device-b")
	require.NoError(t, err)
	assert.False(t, status.InCooldown)

	result, err := l.Submit(ctx, "device-b", models.Submission{})
	require.NoError(t, err)
	assert.Equal(t, models.SubmitAccepted, result.Outcome)
}

func TestMemoryLedgerDeleteExpired(t *testing.T) {
	l, clock := newTestLedger(10 * time.Minute)
	ctx := context.Background()

	_, err := l.Submit(ctx, "device-a", models.Submission{})
	require.NoError(t, err)

	clock.Advance(15 * time.Minute)

	_, err = l.Submit(ctx, "device-a", models.Submission{})
	require.NoError(t, err)

	_, err = l.Submit(ctx, "device-b", models.Submission{})
	require.NoError(t, err)

	removed, err := l.DeleteExpired(ctx, clock.Now().Add(-10*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, int64(1), removed)
	assert.Equal(t, 1, l.Count("device-a"))
	assert.Equal(t, 1, l.Count("device-b"))

	clock.Advance(time.Hour)

	removed, err = l.DeleteExpired(ctx, clock.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.Equal(t, 0, l.Count("device-a"))
	assert.Equal(t, 0, l.Count("device-b"))
}

func TestStatusAfter(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	cooldown := 30 * time.Minute

	tests := []struct {
		name          string
		now           time.Time
		wantCooldown  bool
		wantRemaining time.Duration
	}{
		{
			name:          "immediately after submit",
			now:           base,
			wantCooldown:  true,
			wantRemaining: 30 * time.Minute,
		},
		{
			name:          "inside the window",
			now:           base.Add(12 * time.Minute),
			wantCooldown:  true,
			wantRemaining: 18 * time.Minute,
		},
		{
			name:         "exactly at the boundary",
			now:          base.Add(30 * time.Minute),
			wantCooldown: false,
		},
		{
			name:         "past the window",
			now:          base.Add(45 * time.Minute),
			wantCooldown: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := statusAfter(base, tt.now, cooldown)

			assert.Equal(t, tt.wantCooldown, status.InCooldown)
			assert.Equal(t, tt.wantRemaining, status.Remaining)
		})
	}
}
