// Package ratelimit provides an in-process implementation of
// ports.RateLimitStore for single-node deployments and tests. Multi-node
// deployments use the Redis-backed store instead.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"cafetip/internal/core/ports"
)

// MemoryStore is a fixed-window counter held in a mutex-guarded map.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

type window struct {
	id    int64
	count int64
}

// NewMemoryStore creates an in-memory rate limit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow checks if a request is within the rate limit. Same fixed-window
// semantics as the Redis store: a counter per key per discrete window.
// Windows are sliced in milliseconds so sub-second durations work too.
func (s *MemoryStore) Allow(_ context.Context, key string, limit int64, windowDur time.Duration) (*ports.RateLimitResult, error) {
	windowMs := windowDur.Milliseconds()
	if windowMs <= 0 {
		windowMs = 1
	}
	windowID := s.now().UnixMilli() / windowMs

	s.mu.Lock()
	w, ok := s.windows[key]
	if !ok || w.id != windowID {
		w = &window{id: windowID}
		s.windows[key] = w
	}
	w.count++
	count := w.count
	s.mu.Unlock()

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	// ResetAt is a unix timestamp in whole seconds, rounded up so a
	// Retry-After derived from it never lands inside the same window.
	resetMs := (windowID + 1) * windowMs
	return &ports.RateLimitResult{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   (resetMs + 999) / 1000,
	}, nil
}
