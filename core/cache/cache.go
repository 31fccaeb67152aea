// Package cache provides an explicit cache-aside helper over the kv store:
// get-or-populate with TTL, and invalidation by exact key or glob pattern.
//
// Values are JSON-serialized. There is no single-flight de-duplication:
// concurrent misses for the same key may each invoke the factory, which is
// an accepted tradeoff of this layer. When the store is unavailable every
// call degrades to recomputation; caching never introduces an error.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/skillspace/shield/core/kv"
)

// GetOrSet returns the cached value under key, or invokes factory on a
// miss, stores the result with the given TTL, and returns it. Factory
// errors propagate unchanged; store failures degrade to recomputation.
func GetOrSet[T any](ctx context.Context, store kv.Store, key string, ttl time.Duration, factory func(context.Context) (T, error)) (T, error) {
	if raw, ok := store.Get(ctx, key); ok {
		var cached T
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		// Undecodable entries are treated as misses and overwritten below.
	}

	value, err := factory(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if raw, err := json.Marshal(value); err == nil {
		store.Set(ctx, key, string(raw), ttl)
	}

	return value, nil
}

// Wrap binds a factory to a fixed key and TTL at construction time, so call
// sites stay auditable: the returned function is a drop-in replacement for
// the original with caching applied.
func Wrap[T any](store kv.Store, key string, ttl time.Duration, factory func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		return GetOrSet(ctx, store, key, ttl, factory)
	}
}

// Invalidate removes the given keys. Used after writes that must bust
// dependent cached reads.
func Invalidate(ctx context.Context, store kv.Store, keys ...string) int {
	return store.Del(ctx, keys...)
}

// InvalidatePattern removes every key matching a glob pattern, e.g.
// "lessons:user:42:*".
func InvalidatePattern(ctx context.Context, store kv.Store, pattern string) int {
	return store.Clear(ctx, pattern)
}
