// Package breaker implements a circuit breaker guarding calls to a
// remote dependency.
//
// Failure policy: consecutive failures. The breaker opens after
// FailureThreshold counted failures in a row, fails fast for the
// Cooldown duration, then admits exactly one trial call. The trial
// closes the breaker on success and reopens it on failure.
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without invoking the wrapped call.
// It must never feed back into the failure counter.
var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

type Config struct {
	// FailureThreshold is the number of consecutive failures
	// tripping the breaker. Zero means 1.
	FailureThreshold int

	// Cooldown is how long the breaker stays open before
	// admitting a trial call.
	Cooldown time.Duration
}

func (c *Config) normalize() {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = 1
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 30 * time.Second
	}
}

// A Breaker is shared by all concurrent callers of one dependency.
type Breaker struct {
	mu sync.Mutex

	cfg      Config
	state    State
	failures int
	openedAt time.Time
	trial    bool

	now func() time.Time
}

func New(cfg Config) *Breaker {
	cfg.normalize()
	return &Breaker{cfg: cfg, now: time.Now}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// acquire reserves the right to perform a call.
func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
			return ErrOpen
		}
		b.state = StateHalfOpen
		b.trial = true
		return nil
	case StateHalfOpen:
		if b.trial {
			return ErrOpen
		}
		b.trial = true
		return nil
	}
	return ErrOpen
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.trial = false
	b.state = StateClosed
}

func (b *Breaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.trial = false
		b.open()
		return
	}

	b.failures++
	if b.failures >= b.cfg.FailureThreshold {
		b.open()
	}
}

// open must be called with b.mu held.
func (b *Breaker) open() {
	b.state = StateOpen
	b.failures = 0
	b.openedAt = b.now()
}

// Do runs fn through the breaker. It returns ErrOpen without any I/O
// attempt when the breaker is open. A caller-side cancellation is not
// counted as a dependency failure.
func Do[T any](ctx context.Context, b *Breaker, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if err := b.acquire(); err != nil {
		return zero, err
	}

	v, err := fn(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			b.release()
		} else {
			b.onFailure()
		}
		return zero, err
	}

	b.onSuccess()
	return v, nil
}

// release gives back a half-open trial slot without judging the
// dependency, used when the call did not complete on its own merits.
func (b *Breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trial = false
}
