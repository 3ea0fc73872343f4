package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/insurecare/feedback-portal/internal/domain"
)

const adminStatsKey = "stats:admin"

// StatsCache memoizes dashboard aggregates. Entries are dropped by the event
// subscribers whenever a rating, complaint or profile changes; the TTL bounds
// staleness if an invalidation is lost.
type StatsCache struct {
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsCache builds the cache. A zero ttl disables caching.
func NewStatsCache(c Cache, ttl time.Duration, logger *zap.Logger) *StatsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsCache{cache: c, ttl: ttl, logger: logger}
}

func staffKey(target domain.Target) string {
	return "stats:" + target.String()
}

// StaffStats returns the cached stats of target, computing them on a miss.
func (s *StatsCache) StaffStats(ctx context.Context, target domain.Target, compute func(context.Context) (domain.StaffStats, error)) (domain.StaffStats, error) {
	return load(ctx, s, staffKey(target), compute)
}

// AdminStats returns the cached admin dashboard, computing it on a miss.
func (s *StatsCache) AdminStats(ctx context.Context, compute func(context.Context) (domain.AdminStats, error)) (domain.AdminStats, error) {
	return load(ctx, s, adminStatsKey, compute)
}

// Invalidate drops the entries affected by a change to target. The admin entry is
// always dropped since it aggregates every target.
func (s *StatsCache) Invalidate(ctx context.Context, target domain.Target) error {
	if s == nil || s.cache == nil {
		return nil
	}
	keys := []string{adminStatsKey}
	if !target.IsNone() {
		keys = append(keys, staffKey(target))
	}
	return s.cache.Del(ctx, keys...)
}

func load[T any](ctx context.Context, s *StatsCache, key string, compute func(context.Context) (T, error)) (T, error) {
	if s == nil || s.cache == nil || s.ttl <= 0 {
		return compute(ctx)
	}

	raw, err := s.cache.Get(ctx, key)
	if err == nil {
		var cached T
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			return cached, nil
		}
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	} else if !errors.Is(err, ErrMiss) {
		s.logger.Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err := compute(ctx)
	if err != nil {
		return value, err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return value, nil
	}
	if err := s.cache.Set(ctx, key, string(encoded), s.ttl); err != nil {
		s.logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}
