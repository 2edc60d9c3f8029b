package util

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket holding at most one token, refilled at a
// steady per-minute rate. It throttles the dev backend's AI query
// endpoint, where a single token is enough because requests are
// interactive, not batched.
type RateLimiter struct {
	perSecond float64
	tokens    float64
	last      time.Time
	mu        sync.Mutex
}

// NewRateLimiter allows perMinute operations per minute. The bucket
// starts full so the first call never waits.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		perSecond: float64(perMinute) / 60.0,
		tokens:    1,
		last:      time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if rl.take() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// take refills the bucket for the elapsed time and claims a token if one
// is available.
func (rl *RateLimiter) take() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.tokens += now.Sub(rl.last).Seconds() * rl.perSecond
	if rl.tokens > 1 {
		rl.tokens = 1
	}
	rl.last = now

	if rl.tokens < 1 {
		return false
	}
	rl.tokens--
	return true
}
