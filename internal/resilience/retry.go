package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Backoff controls Retry.
type Backoff struct {
	// Attempts is the total number of tries, including the first. Default 3.
	Attempts int
	// Initial is the delay before the first retry. Default 250ms.
	Initial time.Duration
	// Max caps any single delay. Default 5s.
	Max time.Duration
	// Jitter is the random spread as a fraction of the delay. Default 0.2.
	Jitter float64
	// Retryable decides whether an error is worth another try. Default IsTransient.
	Retryable func(error) bool
}

// DefaultBackoff returns the backoff used for loading lead sources.
func DefaultBackoff() Backoff {
	return Backoff{Attempts: 3, Initial: 250 * time.Millisecond, Max: 5 * time.Second, Jitter: 0.2}
}

func (b Backoff) withDefaults() Backoff {
	d := DefaultBackoff()
	if b.Attempts <= 0 {
		b.Attempts = d.Attempts
	}
	if b.Initial <= 0 {
		b.Initial = d.Initial
	}
	if b.Max <= 0 {
		b.Max = d.Max
	}
	if b.Jitter < 0 {
		b.Jitter = 0
	}
	if b.Retryable == nil {
		b.Retryable = IsTransient
	}
	return b
}

func (b Backoff) delay(attempt int) time.Duration {
	d := math.Min(float64(b.Initial)*math.Pow(2, float64(attempt)), float64(b.Max))
	if b.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * b.Jitter
	}
	return time.Duration(math.Max(d, 0))
}

// Retry calls fn until it succeeds, returns a non-retryable error, runs out
// of attempts, or ctx is done. The last error is returned.
func Retry[T any](ctx context.Context, op string, b Backoff, fn func(context.Context) (T, error)) (T, error) {
	b = b.withDefaults()

	var zero T
	var err error
	for attempt := 0; attempt < b.Attempts; attempt++ {
		var v T
		if v, err = fn(ctx); err == nil {
			return v, nil
		}
		if ctx.Err() != nil || !b.Retryable(err) || attempt == b.Attempts-1 {
			break
		}

		wait := b.delay(attempt)
		zap.L().Warn("retrying operation",
			zap.String("operation", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, err
		case <-timer.C:
		}
	}
	return zero, err
}
