package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insurecare/feedback-portal/internal/domain"
)

func TestNewPrefersRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := New(context.Background(), client)
	_, ok := c.(*RedisCache)
	require.True(t, ok)

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	require.NoError(t, c.Del(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestNewFallsBackToMemory(t *testing.T) {
	_, ok := New(context.Background(), nil).(*MemoryCache)
	assert.True(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	m := NewMemoryCache()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", "v", time.Second))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	now = now.Add(time.Second)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestStatsCacheComputesOnceAndInvalidates(t *testing.T) {
	ctx := context.Background()
	sc := NewStatsCache(NewMemoryCache(), time.Minute, nil)
	target := domain.ForAgent(7)

	calls := 0
	compute := func(context.Context) (domain.StaffStats, error) {
		calls++
		avg := 4.0
		return domain.StaffStats{
			Target:        target,
			TotalRatings:  3,
			AverageRating: &avg,
			RecentRatings: []domain.Rating{{ID: 1, Target: target, Value: 4}},
		}, nil
	}

	first, err := sc.StaffStats(ctx, target, compute)
	require.NoError(t, err)
	second, err := sc.StaffStats(ctx, target, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Target, second.Target)
	assert.Equal(t, target, second.RecentRatings[0].Target)
	require.NotNil(t, second.AverageRating)
	assert.Equal(t, 4.0, *second.AverageRating)

	require.NoError(t, sc.Invalidate(ctx, domain.ForEmployee(1)))
	_, err = sc.StaffStats(ctx, target, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "other targets keep their entry")

	require.NoError(t, sc.Invalidate(ctx, target))
	_, err = sc.StaffStats(ctx, target, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestStatsCachePropagatesComputeErrors(t *testing.T) {
	sc := NewStatsCache(NewMemoryCache(), time.Minute, nil)
	boom := errors.New("boom")
	_, err := sc.AdminStats(context.Background(), func(context.Context) (domain.AdminStats, error) {
		return domain.AdminStats{}, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestStatsCacheDisabledWithZeroTTL(t *testing.T) {
	sc := NewStatsCache(NewMemoryCache(), 0, nil)
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := sc.AdminStats(context.Background(), func(context.Context) (domain.AdminStats, error) {
			calls++
			return domain.AdminStats{}, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}
