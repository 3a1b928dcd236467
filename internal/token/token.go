package token

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Reason explains a validation verdict so the caller can map it to a UI
// state. Expired is deliberately distinct from Malformed.
type Reason string

const (
	ReasonValid     Reason = "valid"
	ReasonMissing   Reason = "missing"
	ReasonMalformed Reason = "malformed"
	ReasonMismatch  Reason = "mismatch"
	ReasonExpired   Reason = "expired"
)

type Result struct {
	Valid  bool
	Reason Reason
}

// Validator checks gate tokens. A token is the pair
// "<issued-unix-ms>.<hex sha256(secret ':' issued-unix-ms)>" and is valid
// while the digest matches and the issue time is within the validity window.
// Validation is pure: no I/O, deterministic for a given token and clock.
type Validator struct {
	secret   string
	validity time.Duration
	now      func() time.Time
}

func NewValidator(secret string, validity time.Duration) *Validator {
	return &Validator{
		secret:   secret,
		validity: validity,
		now:      time.Now,
	}
}

func (v *Validator) Validate(tok string) Result {
	if tok == "" {
		return Result{Valid: false, Reason: ReasonMissing}
	}

	issuedAt, digest, ok := splitToken(tok)
	if !ok {
		return Result{Valid: false, Reason: ReasonMalformed}
	}

	if digest != computeDigest(v.secret, issuedAt) {
		return Result{Valid: false, Reason: ReasonMismatch}
	}

	if !v.now().Before(issuedAt.Add(v.validity)) {
		return Result{Valid: false, Reason: ReasonExpired}
	}

	return Result{Valid: true, Reason: ReasonValid}
}

// Mint issues a token for the given issue time. Used by whatever renders the
// rotating QR code, and by tests.
func Mint(secret string, issuedAt time.Time) string {
	millis := issuedAt.UnixMilli()
	return fmt.Sprintf("%d.%s", millis, computeDigest(secret, issuedAt))
}

func splitToken(tok string) (issuedAt time.Time, digest string, ok bool) {
	parts := strings.Split(tok, ".")
	if len(parts) != 2 {
		return time.Time{}, "", false
	}

	millis, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || millis <= 0 {
		return time.Time{}, "", false
	}

	if len(parts[1]) != hex.EncodedLen(sha256.Size) {
		return time.Time{}, "", false
	}

	if _, err := hex.DecodeString(parts[1]); err != nil {
		return time.Time{}, "", false
	}

	return time.UnixMilli(millis), parts[1], true
}

func computeDigest(secret string, issuedAt time.Time) string {
	sum := sha256.Sum256([]byte(secret + ":" + strconv.FormatInt(issuedAt.UnixMilli(), 10)))
	return hex.EncodeToString(sum[:])
}
