// Package circuit implements a per-adapter circuit breaker with three
// states: CLOSED, OPEN, and HALF_OPEN. It is a small self-contained value
// type rather than middleware tied to one call site, so every adapter can
// own its own instance.
package circuit

import (
	"sync"
	"time"
)

// State is one of the three circuit-breaker states.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "CLOSED"
	}
}

// StateChange reports which transition, if any, a Record* call caused.
type StateChange struct {
	Opened     bool
	Closed     bool
	HalfOpened bool
}

// Breaker is a single-instance, per-process circuit breaker. It holds no
// global state; callers construct one per adapter.
type Breaker struct {
	name string

	mu               sync.Mutex
	state            State
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	failureCount     int
	successCount     int
	openedAt         time.Time
	now              func() time.Time
}

// Option configures a Breaker at construction.
type Option func(*Breaker)

func WithFailureThreshold(n int) Option {
	return func(b *Breaker) { b.failureThreshold = n }
}

func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) { b.successThreshold = n }
}

// WithCooldown sets how long the breaker stays OPEN before allowing a
// HALF_OPEN trial.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) { b.cooldown = d }
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

// New constructs a CLOSED breaker. Defaults: failure threshold 5, success
// threshold 3, cooldown 30s.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: 5,
		successThreshold: 3,
		cooldown:         30 * time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

// State returns the breaker's current state, resolving an elapsed cooldown
// into HALF_OPEN as a side effect (mirrors IsOpen's lazy transition).
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpenLocked()
	return b.state
}

// IsOpen reports whether calls should currently be short-circuited. If the
// breaker is OPEN and its cooldown has elapsed, it transitions to
// HALF_OPEN; in HALF_OPEN it returns false for every call until
// successThreshold successes close the breaker or a failure reopens it.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpenLocked()
	return b.state == StateOpen
}

func (b *Breaker) maybeHalfOpenLocked() {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		b.state = StateHalfOpen
		b.successCount = 0
	}
}

// RecordFailure registers a failed call. useFallback reports whether the
// caller should use the deterministic UNAVAILABLE fallback instead of
// having attempted the call (true whenever the breaker is, or becomes,
// OPEN).
func (b *Breaker) RecordFailure() (useFallback bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpenLocked()

	switch b.state {
	case StateHalfOpen:
		b.state = StateOpen
		b.openedAt = b.now()
		b.failureCount = 0
		b.successCount = 0
		return true, StateChange{}
	case StateOpen:
		return true, StateChange{}
	default: // StateClosed
		b.failureCount++
		b.successCount = 0
		if b.failureCount >= b.failureThreshold {
			b.state = StateOpen
			b.openedAt = b.now()
			b.failureCount = 0
			return true, StateChange{Opened: true}
		}
		return false, StateChange{}
	}
}

// RecordSuccess registers a successful call. usePrimary reports whether the
// circuit is now closed (or already was), i.e. whether future calls should
// go to the primary path.
func (b *Breaker) RecordSuccess() (usePrimary bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpenLocked()

	switch b.state {
	case StateHalfOpen:
		b.successCount++
		b.failureCount = 0
		if b.successCount >= b.successThreshold {
			b.state = StateClosed
			b.successCount = 0
			return true, StateChange{Closed: true}
		}
		return false, StateChange{}
	case StateOpen:
		return false, StateChange{}
	default: // StateClosed
		b.failureCount = 0
		return true, StateChange{}
	}
}

// Reset forces the breaker back to CLOSED, discarding counters. Used by
// administrative recovery paths.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failureCount = 0
	b.successCount = 0
}
