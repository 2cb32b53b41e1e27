package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bazaarly/backbone/pkg/domain/ratelimit"
	"github.com/go-redis/redis/v8"
)

const defaultCounterPrefix = "ratelimit:"

// hitScript runs the fixed-window step atomically inside Redis.
// KEYS[1] counter, ARGV[1] limit, ARGV[2] window in ms.
// Returns {admitted, count, ttl_ms}.
var hitScript = redis.NewScript(`
local ttl = redis.call('PTTL', KEYS[1])
if ttl <= 0 then
	redis.call('SET', KEYS[1], 1, 'PX', ARGV[2])
	return {1, 1, tonumber(ARGV[2])}
end
local count = tonumber(redis.call('GET', KEYS[1]))
if count >= tonumber(ARGV[1]) then
	return {0, count, ttl}
end
count = redis.call('INCR', KEYS[1])
return {1, count, ttl}
`)

type RedisCounterStore struct {
	client redis.UniversalClient
	prefix string
}

type RedisCounterOption func(*RedisCounterStore)

func WithCounterPrefix(prefix string) RedisCounterOption {
	return func(s *RedisCounterStore) {
		s.prefix = prefix
	}
}

func NewRedisCounterStore(client redis.UniversalClient, opts ...RedisCounterOption) *RedisCounterStore {
	s := &RedisCounterStore{client: client, prefix: defaultCounterPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisCounterStore) Hit(
	ctx context.Context,
	key string,
	limit int,
	window time.Duration,
	now time.Time,
) (ratelimit.HitResult, error) {
	raw, err := hitScript.Run(ctx, s.client, []string{s.prefix + key}, limit, window.Milliseconds()).Slice()
	if err != nil {
		return ratelimit.HitResult{}, fmt.Errorf("%w: %w", ratelimit.ErrBackendUnavailable, err)
	}
	if len(raw) != 3 {
		return ratelimit.HitResult{}, fmt.Errorf("%w: unexpected script reply %v", ratelimit.ErrBackendUnavailable, raw)
	}
	vals := make([]int64, 3)
	for i, v := range raw {
		n, ok := v.(int64)
		if !ok {
			return ratelimit.HitResult{}, fmt.Errorf("%w: unexpected script reply %v", ratelimit.ErrBackendUnavailable, raw)
		}
		vals[i] = n
	}

	expiresAt := now.Add(time.Duration(vals[2]) * time.Millisecond)
	return ratelimit.HitResult{
		Admitted: vals[0] == 1,
		Entry: ratelimit.Entry{
			Key:         key,
			WindowStart: expiresAt.Add(-window),
			ExpiresAt:   expiresAt,
			Count:       int(vals[1]),
			LastRequest: now,
		},
	}, nil
}

// Sweep is a no-op: Redis expires counters through their TTL.
func (s *RedisCounterStore) Sweep(context.Context, time.Time) (int64, error) {
	return 0, nil
}
