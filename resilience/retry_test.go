package resilience

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/kbukum/graphkit/errors"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastConfig(3), func(int) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	var retried []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, _ error, _ time.Duration) { retried = append(retried, attempt) }

	err := Retry(context.Background(), cfg, func(attempt int) error {
		if attempt < 3 {
			return errors.CommitFailed(stderrors.New("busy"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(retried) != 2 || retried[0] != 1 || retried[1] != 2 {
		t.Errorf("expected retries after attempts 1 and 2, got %v", retried)
	}
}

func TestRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastConfig(2), func(int) error {
		calls++
		return errors.CommitFailed(stderrors.New("busy"))
	})
	if !errors.HasCode(err, errors.ErrCodeCommitFailed) {
		t.Fatalf("expected COMMIT_FAILED, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastConfig(5), func(int) error {
		calls++
		return errors.GraphWrite("addVertex", stderrors.New("rejected"))
	})
	if !errors.HasCode(err, errors.ErrCodeGraphWrite) {
		t.Fatalf("expected GRAPH_WRITE_FAILED, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a non-retryable error to stop after 1 call, got %d", calls)
	}
}

func TestRetry_NoRetry(t *testing.T) {
	calls := 0
	_ = Retry(context.Background(), NoRetry(), func(int) error {
		calls++
		return stderrors.New("boom")
	})
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, fastConfig(3), func(int) error {
		t.Error("fn must not run after cancellation")
		return nil
	})
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRetry_CancelDuringBackoffKeepsLastError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 3, InitialBackoff: time.Hour, MaxBackoff: time.Hour}
	cfg.OnRetry = func(int, error, time.Duration) { cancel() }

	busy := stderrors.New("busy")
	err := Retry(ctx, cfg, func(int) error { return busy })
	if !stderrors.Is(err, busy) {
		t.Fatalf("expected the last attempt's error, got %v", err)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"commit failed", errors.CommitFailed(stderrors.New("x")), true},
		{"not found", errors.NotFound("vertex", 1), false},
		{"plain", stderrors.New("x"), true},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Retryable(tc.err); got != tc.want {
				t.Errorf("Retryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestBackoffIsCapped(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 10 * time.Millisecond, MaxBackoff: 50 * time.Millisecond, BackoffFactor: 10}.withDefaults()
	if d := cfg.backoff(1); d != 10*time.Millisecond {
		t.Errorf("expected 10ms, got %s", d)
	}
	if d := cfg.backoff(4); d != 50*time.Millisecond {
		t.Errorf("expected the cap of 50ms, got %s", d)
	}
}
