package kv

import (
	"context"
	"time"
)

// Store is the uniform key-value contract the defense layer builds on.
//
// Implementations never surface backing-store failures to callers: every
// method degrades to the empty/failure-safe value (zero string, false, 0)
// when the store is unreachable. Callers must therefore treat a miss as
// "unknown or unavailable", not "definitely absent", unless the operation's
// semantics explicitly mean "not found".
type Store interface {
	// Get returns the value for key. The second result is false on a miss
	// or when the store is unavailable.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores value under key with an optional TTL (zero means no
	// expiry). Returns false when the write could not be confirmed.
	Set(ctx context.Context, key, value string, ttl time.Duration) bool

	// Del removes the given keys and returns how many were deleted.
	Del(ctx context.Context, keys ...string) int

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) bool

	// Expire sets the TTL of an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) bool

	// TTL returns the remaining lifetime of key, or -1 when the key is
	// missing, has no expiry, or the store is unavailable.
	TTL(ctx context.Context, key string) time.Duration

	// Incr atomically increments the integer value at key, creating it at
	// zero first. Returns 0 when the store is unavailable.
	Incr(ctx context.Context, key string) int64

	// Decr atomically decrements the integer value at key.
	Decr(ctx context.Context, key string) int64

	// Clear deletes all keys matching a glob pattern and returns the count.
	Clear(ctx context.Context, pattern string) int

	// HGet returns a hash field value.
	HGet(ctx context.Context, key, field string) (string, bool)

	// HSet stores a hash field value.
	HSet(ctx context.Context, key, field, value string) bool

	// HDel removes hash fields and returns how many were deleted.
	HDel(ctx context.Context, key string, fields ...string) int
}

// Health describes the outcome of a ping-based availability probe.
type Health struct {
	Healthy bool
	Latency time.Duration
	Err     error
}
