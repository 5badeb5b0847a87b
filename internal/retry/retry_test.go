package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var errTransient = errors.New("overloaded")

func transientOnly(err error) bool { return errors.Is(err, errTransient) }

// fakeSleep records sleep calls without waiting.
type fakeSleep struct {
	calls  int
	delays []time.Duration
}

func (f *fakeSleep) sleep(ctx context.Context, d time.Duration) error {
	f.calls++
	f.delays = append(f.delays, d)
	return nil
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	fs := &fakeSleep{}
	p := Policy{MaxAttempts: 3, Delay: 30 * time.Second, Retryable: transientOnly, Sleep: fs.sleep}

	attempts := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts <= 2 {
			return errTransient
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if fs.calls != 2 {
		t.Errorf("slept %d times, want 2", fs.calls)
	}
	for _, d := range fs.delays {
		if d != 30*time.Second {
			t.Errorf("delay = %v, want fixed 30s", d)
		}
	}
}

func TestDo_ExhaustsAttemptCeiling(t *testing.T) {
	fs := &fakeSleep{}
	p := Policy{MaxAttempts: 3, Delay: time.Second, Retryable: transientOnly, Sleep: fs.sleep}

	attempts := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errTransient
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want exactly 3", attempts)
	}
	if !errors.Is(err, errTransient) {
		t.Errorf("final error should wrap the last failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "3 attempts") {
		t.Errorf("error should mention attempt count: %v", err)
	}
}

func TestDo_NonRetryableEscalatesImmediately(t *testing.T) {
	fs := &fakeSleep{}
	p := Policy{MaxAttempts: 3, Delay: time.Second, Retryable: transientOnly, Sleep: fs.sleep}

	fatal := errors.New("invalid api key")
	attempts := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return fatal
	})

	if !errors.Is(err, fatal) {
		t.Fatalf("got %v, want the original error", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry)", attempts)
	}
	if fs.calls != 0 {
		t.Errorf("slept %d times, want 0", fs.calls)
	}
}

func TestDo_FirstTrySuccessNeverSleeps(t *testing.T) {
	fs := &fakeSleep{}
	p := Policy{MaxAttempts: 3, Delay: time.Second, Retryable: transientOnly, Sleep: fs.sleep}

	err := p.Do(context.Background(), func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs.calls != 0 {
		t.Errorf("slept %d times, want 0", fs.calls)
	}
}

func TestDo_ContextCancelledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{
		MaxAttempts: 3,
		Delay:       time.Second,
		Retryable:   transientOnly,
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	err := p.Do(ctx, func(ctx context.Context) error { return errTransient })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestDo_ZeroAttemptsTreatedAsOne(t *testing.T) {
	p := Policy{Retryable: transientOnly}
	attempts := 0
	_ = p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errTransient
	})
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
