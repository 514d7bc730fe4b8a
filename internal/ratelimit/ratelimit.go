// Package ratelimit implements fixed-window request limiting keyed by client.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether another request for key fits the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter keeps its windows in process memory. Counts are not shared between replicas.
type MemoryLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*counter

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

type counter struct {
	count   int
	resetAt time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		windows: make(map[string]*counter),
		NowFunc: time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.NowFunc()

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.windows[key]
	if !ok || !now.Before(c.resetAt) {
		l.evictLocked(now)
		c = &counter{resetAt: now.Add(l.window)}
		l.windows[key] = c
	}
	c.count++
	return c.count <= l.limit, nil
}

func (l *MemoryLimiter) evictLocked(now time.Time) {
	for k, c := range l.windows {
		if !now.Before(c.resetAt) {
			delete(l.windows, k)
		}
	}
}
