// ABOUTME: Retry helpers with exponential backoff for upstream model calls
// ABOUTME: Used by every LLM provider so retry pacing is uniform
package util

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// maxBackoff caps the wait between attempts
const maxBackoff = 30 * time.Second

// ErrPermanent marks an error that must not be retried
var ErrPermanent = errors.New("permanent failure")

// CalculateBackoff returns exponential backoff with jitter.
// Base delay doubles each attempt, with random jitter of up to 25% either way.
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(backoff)/2+1)) - backoff/4
	return backoff + jitter
}

// Retry calls fn up to maxRetries+1 times, sleeping with CalculateBackoff
// between attempts. It stops early when ctx is done or fn returns an error
// wrapping ErrPermanent, and returns the last error seen.
func Retry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(ctx context.Context, attempt int) error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(CalculateBackoff(baseDelay, attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				if lastErr != nil {
					return lastErr
				}
				return ctx.Err()
			case <-timer.C:
			}
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrPermanent) || ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}
