// Package resilience guards calls to the scoring provider and lead databases.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// State is the state of a Breaker.
type State int

const (
	// Closed lets calls through.
	Closed State = iota
	// Open rejects calls until the reset timeout elapses.
	Open
	// HalfOpen lets a single probe through.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned for calls rejected by an open breaker.
var ErrOpen = eris.New("resilience: circuit open")

// BreakerConfig controls a Breaker.
type BreakerConfig struct {
	Name             string
	FailureThreshold int
	ResetTimeout     time.Duration
}

// Breaker stops calling a failing dependency for a cool-down period once
// FailureThreshold consecutive calls have failed.
type Breaker struct {
	cfg BreakerConfig

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool

	now func() time.Time
}

// NewBreaker creates a closed breaker. Non-positive settings take defaults
// of 5 failures and a 30s reset.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// BreakerFromConfig builds a breaker from config-file units.
func BreakerFromConfig(name string, failures, resetSecs int) *Breaker {
	return NewBreaker(BreakerConfig{
		Name:             name,
		FailureThreshold: failures,
		ResetTimeout:     time.Duration(resetSecs) * time.Second,
	})
}

// Call runs fn unless the breaker is open. Cancellation by the caller's
// context is not counted as a failure.
func Call[T any](ctx context.Context, b *Breaker, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.allow(); err != nil {
		return zero, err
	}
	v, err := fn(ctx)
	b.record(ctx, err)
	if err != nil {
		return zero, err
	}
	return v, nil
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cfg.ResetTimeout {
		return HalfOpen
	}
	return b.state
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) < b.cfg.ResetTimeout {
			return ErrOpen
		}
		b.setState(HalfOpen)
		b.probing = true
		return nil
	case HalfOpen:
		if b.probing {
			return ErrOpen
		}
		b.probing = true
		return nil
	default:
		return nil
	}
}

func (b *Breaker) record(ctx context.Context, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		if b.state == HalfOpen {
			b.probing = false
		}
		return
	}

	if err == nil {
		b.failures = 0
		b.probing = false
		if b.state != Closed {
			b.setState(Closed)
		}
		return
	}

	b.failures++
	switch {
	case b.state == HalfOpen:
		b.probing = false
		b.openedAt = b.now()
		b.setState(Open)
	case b.state == Closed && b.failures >= b.cfg.FailureThreshold:
		b.openedAt = b.now()
		b.setState(Open)
	}
}

func (b *Breaker) setState(to State) {
	from := b.state
	b.state = to
	zap.L().Info("circuit state change",
		zap.String("breaker", b.cfg.Name),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)
}
