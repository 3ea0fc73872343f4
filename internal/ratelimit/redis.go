package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// incrWindow bumps the counter, starts its expiry on first hit and returns {count, ttl_ms}.
var incrWindow = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// RedisLimiter shares windows across instances. Redis failures degrade to the
// in-memory fallback instead of rejecting traffic.
type RedisLimiter struct {
	client   *redis.Client
	window   time.Duration
	prefix   string
	fallback *MemoryLimiter
	logger   *zap.Logger
}

// NewRedis builds a limiter. A nil client always uses the fallback.
func NewRedis(client *redis.Client, w time.Duration, logger *zap.Logger) *RedisLimiter {
	if w <= 0 {
		w = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLimiter{
		client:   client,
		window:   w,
		prefix:   "rl:",
		fallback: NewMemory(w),
		logger:   logger,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int) Decision {
	if limit <= 0 {
		limit = 1
	}
	if l.client == nil {
		return l.fallback.Allow(ctx, key, limit)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	res, err := incrWindow.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil || len(res) < 2 {
		l.logger.Warn("redis rate limit unavailable, using memory", zap.Error(err))
		return l.fallback.Allow(ctx, key, limit)
	}

	ttl := time.Duration(res[1]) * time.Millisecond
	if ttl < 0 {
		ttl = l.window
	}
	return decide(int(res[0]), limit, time.Now().UTC().Add(ttl))
}
