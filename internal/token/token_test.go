package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "gate-secret"

func newTestValidator(now time.Time) *Validator {
	v := NewValidator(testSecret, 15*time.Minute)
	v.now = func() time.Time { return now }
	return v
}

func TestValidate_AcceptsFreshToken(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	v := newTestValidator(now)

	result := v.Validate(Mint(testSecret, now.Add(-time.Minute)))

	assert.True(t, result.Valid)
	assert.Equal(t, ReasonValid, result.Reason)
}

func TestValidate_MissingToken(t *testing.T) {
	v := newTestValidator(time.Now())

	result := v.Validate("")

	assert.False(t, result.Valid)
	assert.Equal(t, ReasonMissing, result.Reason)
}

func TestValidate_MalformedTokens(t *testing.T) {
	v := newTestValidator(time.Now())

	tests := []struct {
		name string
		tok  string
	}{
		{"no separator", "justonechunk"},
		{"too many parts", "123.abc.def"},
		{"non numeric issue time", "abc.0000000000000000000000000000000000000000000000000000000000000000"},
		{"negative issue time", "-5.0000000000000000000000000000000000000000000000000000000000000000"},
		{"digest too short", "1700000000000.abcd"},
		{"digest not hex", "1700000000000." + strings.Repeat("z", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.tok)
			assert.False(t, result.Valid)
			assert.Equal(t, ReasonMalformed, result.Reason)
		})
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	now := time.Now()
	v := newTestValidator(now)

	result := v.Validate(Mint("some-other-secret", now))

	assert.False(t, result.Valid)
	assert.Equal(t, ReasonMismatch, result.Reason)
}

func TestValidate_ExpiredDistinctFromMalformed(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	v := newTestValidator(now)

	// Issued 16 minutes ago against a 15 minute window: expired, but
	// structurally sound and correctly signed.
	result := v.Validate(Mint(testSecret, now.Add(-16*time.Minute)))

	assert.False(t, result.Valid)
	assert.Equal(t, ReasonExpired, result.Reason)
}

func TestValidate_BoundaryOfValidityWindow(t *testing.T) {
	issued := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	tok := Mint(testSecret, issued)

	justInside := newTestValidator(issued.Add(15*time.Minute - time.Millisecond))
	assert.True(t, justInside.Validate(tok).Valid)

	atBoundary := newTestValidator(issued.Add(15 * time.Minute))
	result := atBoundary.Validate(tok)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonExpired, result.Reason)
}

func TestValidate_DeterministicForSameTokenAndClock(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	v := newTestValidator(now)
	tok := Mint(testSecret, now.Add(-30*time.Second))

	first := v.Validate(tok)
	second := v.Validate(tok)

	assert.Equal(t, first, second)
}
