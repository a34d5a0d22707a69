package resilience

import (
	"context"
	stderrors "errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/kbukum/graphkit/errors"
)

// RetryConfig configures Retry.
type RetryConfig struct {
	// MaxAttempts counts the first attempt. Values below 1 mean a single
	// attempt.
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	// Jitter spreads each backoff by up to this fraction in either
	// direction.
	Jitter float64
	// RetryIf reports whether err is worth another attempt. Defaults to
	// Retryable.
	RetryIf func(error) bool
	// OnRetry runs before the wait preceding attempt+1.
	OnRetry func(attempt int, err error, backoff time.Duration)
}

// DefaultRetryConfig allows three attempts starting at 100ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.1,
		RetryIf:        Retryable,
	}
}

// NoRetry runs the operation once.
func NoRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 1}
}

// Retryable retries application errors whose code is marked retryable and
// any other error except context cancellation.
func Retryable(err error) bool {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.Retryable
	}
	return true
}

// Retry calls fn until it succeeds, the error is not retryable, attempts run
// out or ctx is done. It returns the last error seen.
func Retry(ctx context.Context, cfg RetryConfig, fn func(attempt int) error) error {
	cfg = cfg.withDefaults()

	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt >= cfg.MaxAttempts || !cfg.RetryIf(err) {
			return err
		}

		wait := cfg.backoff(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff < c.InitialBackoff {
		c.MaxBackoff = c.InitialBackoff
	}
	if c.BackoffFactor < 1 {
		c.BackoffFactor = 2.0
	}
	if c.RetryIf == nil {
		c.RetryIf = Retryable
	}
	return c
}

// backoff is initial * factor^(attempt-1) with jitter, capped at MaxBackoff.
func (c RetryConfig) backoff(attempt int) time.Duration {
	d := float64(c.InitialBackoff) * math.Pow(c.BackoffFactor, float64(attempt-1))
	if c.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * c.Jitter
	}
	if d > float64(c.MaxBackoff) {
		d = float64(c.MaxBackoff)
	}
	if d <= 0 {
		d = float64(c.InitialBackoff)
	}
	return time.Duration(d)
}
