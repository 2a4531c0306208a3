package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"social-scheduler/domain/repository"
)

// incrScript increments the key and arms the window expiry on the first hit of
// a fresh window. Running it as a single script keeps increment and expiry
// atomic under concurrent consumers on any number of processes.
var incrScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
return {count, ttl}
`)

// RateLimitCounter implements the shared counter on Redis.
type RateLimitCounter struct {
	client *redis.Client
}

func NewRateLimitCounter(client *redis.Client) *RateLimitCounter {
	return &RateLimitCounter{client: client}
}

func (c *RateLimitCounter) IncrWithWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := incrScript.Run(ctx, c.client, []string{key}, window.Milliseconds()).Slice()
	if err != nil {
		return 0, 0, err
	}
	count, _ := res[0].(int64)
	ttlMs, _ := res[1].(int64)
	ttl := time.Duration(ttlMs) * time.Millisecond
	if ttl < 0 {
		ttl = window
	}
	return count, ttl, nil
}

func (c *RateLimitCounter) Get(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := c.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, window, nil
	}
	if err != nil {
		return 0, 0, err
	}
	ttl, err := c.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		ttl = window
	}
	return count, ttl, nil
}

var _ repository.IRateLimitCounter = (*RateLimitCounter)(nil)
