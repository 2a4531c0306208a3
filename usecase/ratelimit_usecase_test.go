package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-scheduler/domain/apperror"
	"social-scheduler/domain/model"
)

// memCounter mimics the Redis counter: atomic increment, window armed on the
// first hit.
type memCounter struct {
	mu      sync.Mutex
	counts  map[string]int64
	started map[string]time.Time
}

func newMemCounter() *memCounter {
	return &memCounter{counts: map[string]int64{}, started: map[string]time.Time{}}
}

func (m *memCounter) IncrWithWindow(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	if m.counts[key] == 1 {
		m.started[key] = time.Now()
	}
	ttl := window - time.Since(m.started[key])
	return m.counts[key], ttl, nil
}

func (m *memCounter) Get(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count, ok := m.counts[key]
	if !ok {
		return 0, window, nil
	}
	return count, window - time.Since(m.started[key]), nil
}

func testTiers(ceiling int) map[model.TierName]model.Tier {
	return map[model.TierName]model.Tier{
		model.TierFree: {
			Name: model.TierFree,
			Limits: map[model.ActionKind]model.Limit{
				model.ActionPostCreate: {Ceiling: ceiling, Window: 24 * time.Hour},
			},
		},
	}
}

func TestCheckAndConsumeWithinCeiling(t *testing.T) {
	u := NewRateLimitUsecase(newMemCounter(), testTiers(3))

	for i := 0; i < 3; i++ {
		status, err := u.CheckAndConsume(context.Background(), "42", model.TierFree, model.ActionPostCreate)
		require.NoError(t, err)
		assert.Equal(t, 3-(i+1), status.Remaining)
	}

	_, err := u.CheckAndConsume(context.Background(), "42", model.TierFree, model.ActionPostCreate)
	var rl *apperror.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, model.ActionPostCreate, rl.Action)
	assert.Equal(t, 0, rl.Remaining)
	assert.False(t, rl.ResetAt.IsZero())
}

func TestCheckAndConsumeConcurrentSingleSlot(t *testing.T) {
	u := NewRateLimitUsecase(newMemCounter(), testTiers(1))

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := u.CheckAndConsume(context.Background(), "42", model.TierFree, model.ActionPostCreate)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	// Exactly one of the two concurrent consumers gets the slot.
	allowed, limited := 0, 0
	for err := range results {
		if err == nil {
			allowed++
		} else {
			var rl *apperror.RateLimitError
			require.True(t, errors.As(err, &rl))
			limited++
		}
	}
	assert.Equal(t, 1, allowed)
	assert.Equal(t, 1, limited)
}

func TestUsersDoNotShareBudgets(t *testing.T) {
	u := NewRateLimitUsecase(newMemCounter(), testTiers(1))

	_, err := u.CheckAndConsume(context.Background(), "42", model.TierFree, model.ActionPostCreate)
	require.NoError(t, err)
	_, err = u.CheckAndConsume(context.Background(), "43", model.TierFree, model.ActionPostCreate)
	require.NoError(t, err)
}

func TestPeekDoesNotConsume(t *testing.T) {
	u := NewRateLimitUsecase(newMemCounter(), testTiers(5))

	for i := 0; i < 3; i++ {
		status, err := u.Peek(context.Background(), "42", model.TierFree, model.ActionPostCreate)
		require.NoError(t, err)
		assert.Equal(t, 5, status.Remaining)
	}

	_, err := u.CheckAndConsume(context.Background(), "42", model.TierFree, model.ActionPostCreate)
	require.NoError(t, err)
	status, err := u.Peek(context.Background(), "42", model.TierFree, model.ActionPostCreate)
	require.NoError(t, err)
	assert.Equal(t, 4, status.Remaining)
}

func TestUnknownTierFallsBackToFree(t *testing.T) {
	u := NewRateLimitUsecase(newMemCounter(), testTiers(1))

	_, err := u.CheckAndConsume(context.Background(), "42", model.TierName("platinum"), model.ActionPostCreate)
	require.NoError(t, err)
	_, err = u.CheckAndConsume(context.Background(), "42", model.TierName("platinum"), model.ActionPostCreate)
	var rl *apperror.RateLimitError
	assert.True(t, errors.As(err, &rl))
}
