// Package retry provides a reusable retry policy with exponential
// backoff and jitter for calls to external collaborators.
//
// Retry state (attempt count, last error) is explicit data rather than
// control flow: callers classify each failure as transient or permanent
// and the policy decides whether another attempt happens.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Outcome classifies a single attempt.
type Outcome int

const (
	// Success means the attempt produced a usable result.
	Success Outcome = iota
	// Transient means the attempt failed in a way another try may fix
	// (timeout, rate limit, malformed response).
	Transient
	// Permanent means retrying cannot help (invalid input, rejected
	// prompt). The loop stops immediately.
	Permanent
)

// Policy holds the backoff parameters for a retry loop.
type Policy struct {
	MaxAttempts int           // total attempts including the first (default 3)
	BaseDelay   time.Duration // first backoff delay (default 500ms)
	MaxDelay    time.Duration // backoff cap (default 10s)
}

// DefaultPolicy mirrors the defaults used for the generation collaborator.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 10 * time.Second}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 500 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 10 * time.Second
	}
	return p
}

// ErrExhausted is returned when every attempt failed transiently.
var ErrExhausted = errors.New("retry: attempts exhausted")

// Attempt runs one try of the operation. It returns the outcome and,
// for failures, the error behind it.
type Attempt func(ctx context.Context, attempt int) (Outcome, error)

// Do runs fn under the policy. It returns nil on success, the last
// error (wrapped in ErrExhausted) when transient failures exhaust the
// attempts, the attempt's error for a permanent failure, and the
// context error if the deadline expires during a backoff wait.
func (p Policy) Do(ctx context.Context, fn Attempt) error {
	p = p.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if attempt > 1 {
			timer := time.NewTimer(p.delay(attempt - 1))
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}

		outcome, err := fn(ctx, attempt)
		switch outcome {
		case Success:
			return nil
		case Permanent:
			return err
		default:
			lastErr = err
		}
	}
	return errors.Join(ErrExhausted, lastErr)
}

// delay returns the backoff before retry number n (1-based), using
// exponential growth with full jitter and a 50ms floor.
func (p Policy) delay(n int) time.Duration {
	exp := float64(p.BaseDelay) * math.Pow(2, float64(n-1))
	if exp > float64(p.MaxDelay) {
		exp = float64(p.MaxDelay)
	}
	jittered := time.Duration(rand.Float64() * exp)
	if jittered < 50*time.Millisecond {
		jittered = 50 * time.Millisecond
	}
	return jittered
}
