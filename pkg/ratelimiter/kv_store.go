package ratelimiter

import (
	"context"
	"time"

	"github.com/skillspace/shield/core/kv"
)

// KVStore persists fixed-window counters in the shared kv store, giving
// consistent enforcement across all instances. The kv layer degrades
// silently, so an incremented count of zero is the unavailability signal
// (a live INCR always returns at least one) and surfaces here as
// ErrStoreUnavailable for the caller's failure policy.
type KVStore struct {
	store  kv.Store
	prefix string
}

// KVStoreOption configures a KVStore.
type KVStoreOption func(*KVStore)

// WithPrefix overrides the key namespace, default "ratelimit:".
func WithPrefix(prefix string) KVStoreOption {
	return func(s *KVStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewKVStore creates a store over the shared kv backend.
func NewKVStore(store kv.Store, opts ...KVStoreOption) *KVStore {
	s := &KVStore{store: store, prefix: "ratelimit:"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Increment advances the counter for key. The first hit in a window sets
// the TTL so the counter self-expires at the window boundary; later hits
// derive the deadline from the remaining TTL.
func (s *KVStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	now := time.Now()
	k := s.prefix + key

	count := s.store.Incr(ctx, k)
	if count == 0 {
		return 0, time.Time{}, ErrStoreUnavailable
	}

	if count == 1 {
		s.store.Expire(ctx, k, window)
		return count, now.Add(window), nil
	}

	ttl := s.store.TTL(ctx, k)
	if ttl < 0 {
		// Counter exists without expiry (lost TTL after a failover, or the
		// Expire above was dropped by a degraded store). Re-arm it so the
		// key cannot count forever.
		s.store.Expire(ctx, k, window)
		ttl = window
	}
	return count, now.Add(ttl), nil
}
