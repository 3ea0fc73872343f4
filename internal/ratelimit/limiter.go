// Package ratelimit implements fixed-window request counters keyed by client.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of one counted request.
type Decision struct {
	Allowed   bool
	Count     int
	Limit     int
	Remaining int
	ResetAt   time.Time
}

func decide(count, limit int, resetAt time.Time) Decision {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= limit,
		Count:     count,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// Limiter counts a request against key and reports whether it is within limit.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int) Decision
}

// MemoryLimiter keeps windows in process memory.
type MemoryLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	windows map[string]window
}

type window struct {
	count   int
	resetAt time.Time
}

// NewMemory builds a limiter with the given window, one minute when unset.
func NewMemory(w time.Duration) *MemoryLimiter {
	if w <= 0 {
		w = time.Minute
	}
	return &MemoryLimiter{
		window:  w,
		now:     func() time.Time { return time.Now().UTC() },
		windows: make(map[string]window),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int) Decision {
	if limit <= 0 {
		limit = 1
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	for k, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, k)
		}
	}
	curr, ok := l.windows[key]
	if !ok {
		curr = window{resetAt: now.Add(l.window)}
	}
	curr.count++
	l.windows[key] = curr
	return decide(curr.count, limit, curr.resetAt)
}
