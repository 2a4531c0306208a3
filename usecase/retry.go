package usecase

import (
	"context"
	"time"

	"social-scheduler/domain/apperror"
)

// withRetry runs fn up to attempts times, waiting delay between tries. Only
// transient failures are retried; every other kind is definitive and retrying
// would just repeat the same answer.
func withRetry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		err = fn()
		if err == nil || !apperror.IsTransient(err) {
			return err
		}
	}
	return err
}
