package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemory(time.Minute)
	l.now = func() time.Time { return now }

	for i := 1; i <= 3; i++ {
		d := l.Allow(ctx, "ip-1", 3)
		require.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 3-i, d.Remaining)
	}
	d := l.Allow(ctx, "ip-1", 3)
	assert.False(t, d.Allowed)
	assert.Equal(t, now.Add(time.Minute), d.ResetAt)

	assert.True(t, l.Allow(ctx, "ip-2", 3).Allowed, "keys are independent")

	now = now.Add(time.Minute)
	d = l.Allow(ctx, "ip-1", 3)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	l := NewRedis(client, time.Minute, nil)
	assert.True(t, l.Allow(ctx, "ip", 2).Allowed)
	assert.True(t, l.Allow(ctx, "ip", 2).Allowed)
	d := l.Allow(ctx, "ip", 2)
	assert.False(t, d.Allowed)
	assert.Equal(t, 3, d.Count)
	assert.True(t, mr.Exists("rl:ip"))

	mr.FastForward(time.Minute)
	assert.True(t, l.Allow(ctx, "ip", 2).Allowed)
}

func TestRedisLimiterFallsBackWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	l := NewRedis(client, time.Minute, nil)
	d := l.Allow(context.Background(), "ip", 1)
	assert.True(t, d.Allowed)
	assert.False(t, l.Allow(context.Background(), "ip", 1).Allowed)
}

func TestNilClientUsesMemory(t *testing.T) {
	l := NewRedis(nil, 0, nil)
	assert.Equal(t, time.Minute, l.window)
	assert.True(t, l.Allow(context.Background(), "k", 1).Allowed)
	assert.False(t, l.Allow(context.Background(), "k", 1).Allowed)
}
