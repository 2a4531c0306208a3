package repository

import (
	"context"
	"time"
)

// IRateLimitCounter is the shared counter store behind the rate limiter. The
// increment must be atomic across all processes touching the same key; the
// implementation is a single Redis script, not application-level locking.
type IRateLimitCounter interface {
	// IncrWithWindow atomically increments the counter, starting a fresh
	// window of the given length on first consumption, and returns the new
	// count together with the time left until the window resets.
	IncrWithWindow(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
	// Get reads the counter without consuming. A missing key returns 0 and
	// the full window length.
	Get(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}
