package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jchen-labs/media-summary/internal/logger"
)

// backoffSchedule holds the wait before each retry; three retries follow
// the initial attempt.
var backoffSchedule = []time.Duration{4 * time.Second, 8 * time.Second, 16 * time.Second}

var maxAttempts = 1 + len(backoffSchedule)

// retryDelay applies up to 10% jitter so retries from parallel chunk
// workers do not hit a rate-limited provider in lockstep.
func retryDelay(failedAttempts int) time.Duration {
	idx := failedAttempts - 1
	if idx >= len(backoffSchedule) {
		idx = len(backoffSchedule) - 1
	}
	base := backoffSchedule[idx]
	jitter := 1 + (rand.Float64()*0.2 - 0.1)
	return time.Duration(float64(base) * jitter)
}

// withRetry runs fn up to maxAttempts times with exponential backoff.
// Context cancellation aborts the wait and returns immediately.
func withRetry[T any](ctx context.Context, log logger.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := retryDelay(attempt - 1)
			log.Warn(ctx, "%s failed (attempt %d/%d), retrying in %s: %v",
				op, attempt-1, maxAttempts, delay.Round(time.Millisecond), lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}

	return zero, fmt.Errorf("%s failed after %d attempts: %w", op, maxAttempts, lastErr)
}
