// Package device derives a best-effort stable identifier for the visitor's
// device. The identifier correlates repeated visits; it is client-derived and
// not a security boundary.
package device

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Signals are the environment characteristics the fallback identifier is
// derived from.
type Signals struct {
	UserAgent           string
	Language            string
	ScreenWidth         int
	ScreenHeight        int
	ColorDepth          int
	TimezoneOffsetMin   int
	HardwareConcurrency int
}

// Identity is what the primary fingerprinting strategy reports. Confidence is
// recorded but not acted upon.
type Identity struct {
	VisitorID  string
	Confidence float64
}

// Provider is the primary fingerprinting strategy.
type Provider interface {
	Identify(ctx context.Context) (Identity, error)
}

// ProviderFunc adapts a plain function to a Provider.
type ProviderFunc func(ctx context.Context) (Identity, error)

func (f ProviderFunc) Identify(ctx context.Context) (Identity, error) {
	return f(ctx)
}

// Cache persists a resolved identifier for the lifetime of the install.
type Cache interface {
	Load() (string, bool)
	Store(id string)
}

// Resolver resolves the device identifier: cached value first, then the
// primary provider (cached on success), then the signals-hash fallback.
//
// The fallback id carries a random and a timestamp component and is never
// cached, so it changes on every call while the primary provider keeps
// failing. That matches the existing behavior and is kept on purpose: a
// visitor whose browser blocks fingerprinting ends up effectively outside the
// per-device cooldown rather than pinned to someone else's identifier.
type Resolver struct {
	provider Provider
	cache    Cache
	signals  Signals
	logger   *slog.Logger
	now      func() time.Time
}

func NewResolver(provider Provider, cache Cache, signals Signals, logger *slog.Logger) *Resolver {
	return &Resolver{
		provider: provider,
		cache:    cache,
		signals:  signals,
		logger:   logger,
		now:      time.Now,
	}
}

// DeviceID never fails; the fallback path always yields an identifier.
func (r *Resolver) DeviceID(ctx context.Context) string {
	if id, ok := r.cache.Load(); ok && id != "" {
		return id
	}

	if r.provider != nil {
		identity, err := r.provider.Identify(ctx)
		if err == nil && identity.VisitorID != "" {
			r.logger.Debug("resolved device id via fingerprint provider", "confidence", identity.Confidence)
			r.cache.Store(identity.VisitorID)
			return identity.VisitorID
		}
		if err != nil {
			r.logger.Warn("fingerprint provider failed, deriving fallback id", "error", err)
		}
	}

	return r.fallbackID()
}

func (r *Resolver) fallbackID() string {
	seed := strings.Join([]string{
		signalsKey(r.signals),
		uuid.NewString(),
		strconv.FormatInt(r.now().UnixNano(), 10),
	}, "|")

	sum := sha256.Sum256([]byte(seed))
	return "fb_" + hex.EncodeToString(sum[:16])
}

// HashSignals derives the deterministic part of the fallback identifier.
// Same signals always hash to the same value.
func HashSignals(s Signals) string {
	sum := sha256.Sum256([]byte(signalsKey(s)))
	return hex.EncodeToString(sum[:16])
}

func signalsKey(s Signals) string {
	return fmt.Sprintf("%s|%s|%dx%dx%d|tz%d|hc%d",
		s.UserAgent,
		s.Language,
		s.ScreenWidth, s.ScreenHeight, s.ColorDepth,
		s.TimezoneOffsetMin,
		s.HardwareConcurrency,
	)
}
