// ABOUTME: Tests for backoff calculation and the Retry loop
// ABOUTME: Validates bounds, jitter, permanent errors and cancellation
package util

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestCalculateBackoff_ZeroAttempt(t *testing.T) {
	result := CalculateBackoff(time.Second, 0)
	if result != 0 {
		t.Errorf("expected 0 for attempt 0, got %v", result)
	}
}

func TestCalculateBackoff_ExponentialGrowth(t *testing.T) {
	baseDelay := 100 * time.Millisecond

	// Run multiple times to account for jitter, check median values grow
	for attempt := 1; attempt <= 5; attempt++ {
		// Expected base: 2^attempt * 100ms
		expectedBase := baseDelay * time.Duration(1<<uint(attempt))
		minExpected := expectedBase * 3 / 4 // -25%
		maxExpected := expectedBase * 5 / 4 // +25%

		result := CalculateBackoff(baseDelay, attempt)

		if result < minExpected || result > maxExpected {
			t.Errorf("attempt %d: expected backoff between %v and %v, got %v",
				attempt, minExpected, maxExpected, result)
		}
	}
}

func TestCalculateBackoff_CapsAt30Seconds(t *testing.T) {
	baseDelay := time.Second

	// Attempt 10 would give 2^10 * 1s = 1024s without cap
	result := CalculateBackoff(baseDelay, 10)

	// Should be capped at 30s with ±25% jitter = 22.5s to 37.5s
	maxAllowed := 37500 * time.Millisecond

	if result > maxAllowed {
		t.Errorf("expected backoff <= %v (30s + 25%% jitter), got %v", maxAllowed, result)
	}
}

func TestCalculateBackoff_AttemptCappedAt30(t *testing.T) {
	baseDelay := time.Millisecond

	// Very high attempt values should not overflow or panic
	result := CalculateBackoff(baseDelay, 100)

	// Should be capped at 30s with jitter
	maxAllowed := 37500 * time.Millisecond

	if result > maxAllowed {
		t.Errorf("expected backoff <= %v for high attempt, got %v", maxAllowed, result)
	}
	if result < 0 {
		t.Error("backoff should never be negative")
	}
}

func TestCalculateBackoff_NegativeAttemptReturnsZero(t *testing.T) {
	// Negative attempts should return 0 (same as attempt 0)
	result := CalculateBackoff(time.Second, -1)

	if result != 0 {
		t.Errorf("expected 0 for negative attempt, got %v", result)
	}

	// Also test very negative values
	result = CalculateBackoff(time.Second, -100)
	if result != 0 {
		t.Errorf("expected 0 for very negative attempt, got %v", result)
	}
}

func TestCalculateBackoff_ZeroBaseDelay(t *testing.T) {
	if got := CalculateBackoff(0, 3); got != 0 {
		t.Errorf("CalculateBackoff(0, 3) = %v, want 0", got)
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func(ctx context.Context, attempt int) error {
		calls++
		if attempt < 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, func(ctx context.Context, attempt int) error {
		calls++
		return fmt.Errorf("attempt %d failed", attempt)
	})
	if err == nil || err.Error() != "attempt 2 failed" {
		t.Errorf("Retry() error = %v, want attempt 2 failed", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_StopsOnPermanent(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, time.Millisecond, func(ctx context.Context, attempt int) error {
		calls++
		return fmt.Errorf("bad request: %w", ErrPermanent)
	})
	if !errors.Is(err, ErrPermanent) {
		t.Errorf("Retry() error = %v, want ErrPermanent", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, 5, time.Hour, func(ctx context.Context, attempt int) error {
		calls++
		cancel()
		return errors.New("transient")
	})
	if err == nil {
		t.Fatal("Retry() should fail after cancellation")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
