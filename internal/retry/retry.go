// Package retry implements the bounded retry policy wrapped around
// model calls.
//
// Retries are blind: a fixed delay, no jitter or backoff growth. Call
// volume is one user's chat traffic, so the simplicity is a deliberate
// trade; the Sleep hook exists so tests can run without real delays.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Policy describes when and how an operation is retried.
type Policy struct {
	// MaxAttempts is the total attempt ceiling, including the first
	// call. Values below 1 are treated as 1.
	MaxAttempts int

	// Delay is the fixed pause between attempts.
	Delay time.Duration

	// Retryable classifies an error. Only errors it accepts are
	// retried; everything else escalates immediately. A nil predicate
	// retries nothing.
	Retryable func(error) bool

	// Sleep pauses between attempts. Nil uses a context-aware
	// time.Timer sleep. Tests inject a fake to avoid real delays.
	Sleep func(ctx context.Context, d time.Duration) error

	// Logger receives per-attempt diagnostics. Nil uses slog.Default.
	Logger *slog.Logger
}

// Do runs fn, retrying retryable failures up to the attempt ceiling.
// The error of the final attempt is returned wrapped with the attempt
// count once the ceiling is reached.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		logger.Warn("transient upstream error, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", p.Delay,
			"error", err,
		)
		if serr := sleep(ctx, p.Delay); serr != nil {
			return serr
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", attempts, err)
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
