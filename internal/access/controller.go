// Package access implements the admission state machine in front of the
// attendance form. Rule order is fixed: an active cooldown wins over
// everything, an existing session grant wins over token validation, and only
// then is the presented token checked.
package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/ledger"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/metrics"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/models"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/notify"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/token"
)

type State string

const (
	StateChecking   State = "checking"
	StateValidating State = "validating"
	StateGranted    State = "granted"
	StateDenied     State = "denied"
	StateExpired    State = "expired"
	StateCooldown   State = "cooldown"
)

// Decision is the externally visible snapshot of the controller.
type Decision struct {
	State     State
	Reason    string
	Remaining time.Duration
}

// SessionStore is the slice of session behavior the controller needs.
type SessionStore interface {
	HasValidSession(ctx context.Context) bool
	StoreSessionToken(ctx context.Context)
}

// DeviceSource yields the identifier admission decisions are keyed on.
type DeviceSource interface {
	DeviceID(ctx context.Context) string
}

// TokenValidator checks a presented gate token.
type TokenValidator interface {
	Validate(tok string) token.Result
}

// FixedDevice is a DeviceSource for callers that already know the id.
type FixedDevice string

func (d FixedDevice) DeviceID(context.Context) string {
	return string(d)
}

type Deps struct {
	Ledger   ledger.Ledger
	Sessions SessionStore
	Devices  DeviceSource
	Tokens   TokenValidator
	Sink     notify.Sink
	Logger   *slog.Logger
}

type Options struct {
	// PresentationDelay holds the validating state long enough for a UI to
	// show it before the verdict lands.
	PresentationDelay time.Duration
	// PollInterval is how often an active cooldown is re-checked against the
	// ledger. Zero disables the poll.
	PollInterval time.Duration
	// CountdownTick is how often the local remaining estimate is decremented
	// between polls. Zero disables the tick.
	CountdownTick time.Duration
}

type Controller struct {
	deps Deps
	opts Options

	now func() time.Time

	// baseCtx bounds the watch goroutines, not individual evaluations.
	baseCtx context.Context
	cancel  context.CancelFunc

	mu          sync.Mutex
	state       State
	reason      string
	remaining   time.Duration
	watchCancel context.CancelFunc
	listener    func(Decision)
}

func NewController(deps Deps, opts Options) *Controller {
	baseCtx, cancel := context.WithCancel(context.Background())

	return &Controller{
		deps:    deps,
		opts:    opts,
		now:     time.Now,
		baseCtx: baseCtx,
		cancel:  cancel,
		state:   StateChecking,
	}
}

// State returns the current decision snapshot.
func (c *Controller) State() Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Decision{State: c.state, Reason: c.reason, Remaining: c.remaining}
}

// OnTransition registers fn to run after every state change and countdown
// update. One listener; later registrations replace earlier ones.
func (c *Controller) OnTransition(fn func(Decision)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.listener = fn
}

// Close stops the watch goroutines. The controller is not reusable after.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.watchCancel != nil {
		c.watchCancel()
		c.watchCancel = nil
	}
	c.mu.Unlock()

	c.cancel()
}

// Evaluate runs the admission sequence for a presented token and returns the
// resulting decision. Ledger read errors fail open: a broken backend must not
// lock a legitimate visitor out.
func (c *Controller) Evaluate(ctx context.Context, presentedToken string) Decision {
	c.transition(StateChecking, "", 0)

	deviceID := c.deps.Devices.DeviceID(ctx)

	status, err := c.deps.Ledger.Check(ctx, deviceID)
	if err != nil {
		c.deps.Logger.Warn("cooldown check failed, treating device as clear", "error", err)
		status = models.CooldownStatus{}
	}

	if status.InCooldown {
		return c.enterCooldown(status.Remaining)
	}

	if c.deps.Sessions != nil && c.deps.Sessions.HasValidSession(ctx) {
		return c.transition(StateGranted, "session restored", 0)
	}

	if presentedToken == "" {
		return c.transition(StateDenied, "no token provided", 0)
	}

	c.transition(StateValidating, "", 0)

	if !c.waitPresentation(ctx) {
		return c.State()
	}

	// The delay is long enough for a cooldown to land from another tab, so
	// re-check before honoring the token.
	status, err = c.deps.Ledger.Check(ctx, deviceID)
	if err != nil {
		c.deps.Logger.Warn("cooldown re-check failed, treating device as clear", "error", err)
		status = models.CooldownStatus{}
	}

	if status.InCooldown {
		return c.enterCooldown(status.Remaining)
	}

	result := c.deps.Tokens.Validate(presentedToken)
	if !result.Valid {
		return c.transition(StateExpired, expiryReason(result.Reason), 0)
	}

	if c.deps.Sessions != nil {
		c.deps.Sessions.StoreSessionToken(ctx)
	}

	return c.transition(StateGranted, "token validated", 0)
}

// SubmitStatus reports a submit attempt. NotifyErr is advisory: the
// submission stands even when forwarding failed.
type SubmitStatus struct {
	Accepted  bool
	Decision  Decision
	Result    models.SubmitResult
	NotifyErr error
}

// SubmitForm records the visitor's form if the device is clear and starts
// its cooldown. Unlike Evaluate, infrastructure errors fail closed here: a
// submission that cannot be verified against the ledger is not recorded and
// the state is left untouched.
func (c *Controller) SubmitForm(ctx context.Context, form models.FormPayload) (SubmitStatus, error) {
	deviceID := c.deps.Devices.DeviceID(ctx)

	result, err := c.deps.Ledger.Submit(ctx, deviceID, form.Submission())
	if err != nil {
		return SubmitStatus{}, err
	}

	switch result.Outcome {
	case models.SubmitRejected:
		decision := c.enterCooldown(result.Remaining)

		return SubmitStatus{Decision: decision, Result: result}, nil

	case models.SubmitAccepted:
		var notifyErr error
		if c.deps.Sink != nil {
			if notifyErr = c.deps.Sink.Forward(ctx, form); notifyErr != nil {
				if errors.Is(notifyErr, notify.ErrNotConfigured) {
					c.deps.Logger.Debug("notification webhook not configured, skipping forward")
				} else {
					c.deps.Logger.Error("failed to forward submission notification", "error", notifyErr)
				}
			}
		}

		decision := c.enterCooldown(result.CooldownUntil.Sub(c.now()))

		return SubmitStatus{Accepted: true, Decision: decision, Result: result, NotifyErr: notifyErr}, nil

	default:
		return SubmitStatus{}, fmt.Errorf("ledger submit failed with outcome %q", result.Outcome)
	}
}

func (c *Controller) transition(state State, reason string, remaining time.Duration) Decision {
	c.mu.Lock()

	// A new state invalidates whatever watch was pacing the old one.
	if c.watchCancel != nil {
		c.watchCancel()
		c.watchCancel = nil
	}

	c.state = state
	c.reason = reason
	c.remaining = remaining

	decision := Decision{State: state, Reason: reason, Remaining: remaining}
	listener := c.listener
	c.mu.Unlock()

	metrics.AdmissionDecisions.WithLabelValues(string(state)).Inc()

	if listener != nil {
		listener(decision)
	}

	return decision
}

// updateRemaining refreshes the countdown without counting as a transition.
// Dropped when the state has already moved on.
func (c *Controller) updateRemaining(remaining time.Duration) {
	c.mu.Lock()
	if c.state != StateCooldown {
		c.mu.Unlock()
		return
	}

	c.remaining = remaining
	decision := Decision{State: c.state, Reason: c.reason, Remaining: remaining}
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		listener(decision)
	}
}

func (c *Controller) enterCooldown(remaining time.Duration) Decision {
	decision := c.transition(StateCooldown, "cooldown active", remaining)
	c.startCooldownWatch()

	return decision
}

func (c *Controller) startCooldownWatch() {
	if c.opts.PollInterval <= 0 && c.opts.CountdownTick <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateCooldown {
		return
	}

	watchCtx, cancel := context.WithCancel(c.baseCtx)
	c.watchCancel = cancel

	if c.opts.PollInterval > 0 {
		go c.pollCooldown(watchCtx)
	}

	if c.opts.CountdownTick > 0 {
		go c.tickCountdown(watchCtx)
	}
}

// pollCooldown re-checks the ledger on a fixed cadence. The ledger stays
// authoritative: a cleared cooldown flips the state to granted no matter
// what the local countdown still shows, and a poll failure keeps the local
// countdown rather than guessing.
func (c *Controller) pollCooldown(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	deviceID := c.deps.Devices.DeviceID(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status, err := c.deps.Ledger.Check(ctx, deviceID)
			if err != nil {
				c.deps.Logger.Warn("cooldown poll failed, keeping local countdown", "error", err)
				continue
			}

			if ctx.Err() != nil {
				return
			}

			if !status.InCooldown {
				c.transition(StateGranted, "cooldown cleared", 0)
				return
			}

			c.updateRemaining(status.Remaining)
		}
	}
}

// tickCountdown keeps the visible countdown moving between polls. It only
// ever decrements toward zero; the poll is the sole path out of cooldown.
func (c *Controller) tickCountdown(ctx context.Context) {
	ticker := time.NewTicker(c.opts.CountdownTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.state != StateCooldown {
				c.mu.Unlock()
				return
			}

			remaining := c.remaining - c.opts.CountdownTick
			if remaining < 0 {
				remaining = 0
			}
			c.remaining = remaining

			decision := Decision{State: c.state, Reason: c.reason, Remaining: remaining}
			listener := c.listener
			c.mu.Unlock()

			if listener != nil {
				listener(decision)
			}
		}
	}
}

// waitPresentation holds the validating state for the configured beat. False
// means the wait was cut short by cancellation.
func (c *Controller) waitPresentation(ctx context.Context) bool {
	if c.opts.PresentationDelay <= 0 {
		return true
	}

	timer := time.NewTimer(c.opts.PresentationDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-c.baseCtx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func expiryReason(reason token.Reason) string {
	switch reason {
	case token.ReasonExpired:
		return "token expired"
	case token.ReasonMismatch:
		return "token rejected"
	default:
		return "token malformed"
	}
}
