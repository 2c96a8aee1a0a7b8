// Package retry provides an explicit retry policy for provider calls.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes how a failing call is retried. Backoff enables exponential
// delays between attempts, doubling from BaseDelay up to MaxDelay.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Backoff   bool
}

// Immediate retries up to attempts times with no delay between attempts.
func Immediate(attempts int) Policy {
	return Policy{Attempts: attempts}
}

// Exponential retries up to attempts times, doubling the delay from base.
func Exponential(attempts int, base, max time.Duration) Policy {
	return Policy{Attempts: attempts, BaseDelay: base, MaxDelay: max, Backoff: true}
}

// Do invokes fn until it succeeds or the attempt budget is exhausted. The last
// error is returned wrapped with the attempt count. Context cancellation stops
// the loop between attempts.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && p.Backoff {
			if err := sleep(ctx, p.delay(attempt)); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("retry: %d attempts: %w", attempts, lastErr)
}

// delay returns the backoff delay before the given attempt (attempt ≥ 1).
func (p Policy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
