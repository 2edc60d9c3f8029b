package util

import (
	"context"
	"time"
)

// Retry runs fn until it succeeds or maxAttempts is exhausted, doubling
// the wait between attempts starting from baseDelay. It is used for the
// backend fetches where a transient failure should not surface to the
// user. The last error is returned when every attempt fails; cancelling
// ctx aborts the wait between attempts.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	wait := baseDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}

	return lastErr
}
