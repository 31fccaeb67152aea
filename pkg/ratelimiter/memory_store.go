package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps fixed-window counters in process memory. Counters are
// not shared between instances, so enforcement is only correct for a single
// process: use it in development and tests, and KVStore in production.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count   int64
	resetAt time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*window)}
}

// Increment advances the counter for key, starting a fresh window when the
// previous one has elapsed. It never returns an error.
func (s *MemoryStore) Increment(_ context.Context, key string, windowDur time.Duration) (int64, time.Time, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(windowDur)}
		s.windows[key] = w
	}
	w.count++

	return w.count, w.resetAt, nil
}

// Cleanup removes expired windows. Callers with long-lived stores should
// invoke it periodically to bound memory growth.
func (s *MemoryStore) Cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
		}
	}
}
