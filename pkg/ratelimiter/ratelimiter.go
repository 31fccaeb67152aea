// Package ratelimiter implements fixed-window request counting with
// pluggable storage backends.
//
// Each key owns a counter and a window deadline. The first request in a
// window sets the deadline; subsequent requests increment the counter until
// the deadline passes, at which point the counter resets and a new window
// begins. The counter never decreases within a window.
//
// Two stores are provided. MemoryStore keeps counters in-process and is
// only correct for a single instance: use it in development and tests.
// KVStore routes counters through the shared kv store, which is required
// for correct enforcement across multiple concurrent instances.
//
//	store := ratelimiter.NewKVStore(kvStore)
//	limiter, err := ratelimiter.New(store, ratelimiter.AuthPolicy)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := limiter.Allow(ctx, clientIP)
//	if err != nil {
//		// store unavailable: the middleware fails open
//	}
//	if !result.Allowed() {
//		// deny with Retry-After = result.RetryAfter()
//	}
package ratelimiter

import (
	"context"
	"time"
)

// Store persists windowed counters. Increment advances the counter for key
// within the current window, resetting it first when the window has
// elapsed, and returns the post-increment count with the window deadline.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// Config defines one rate limit policy: at most Limit requests per Window.
type Config struct {
	Limit  int
	Window time.Duration
}

// Route-class default policies.
var (
	// GeneralPolicy covers unauthenticated API traffic.
	GeneralPolicy = Config{Limit: 100, Window: 15 * time.Minute}
	// AuthPolicy throttles login attempts aggressively.
	AuthPolicy = Config{Limit: 5, Window: 15 * time.Minute}
	// PasswordResetPolicy bounds reset-email abuse.
	PasswordResetPolicy = Config{Limit: 3, Window: time.Hour}
	// UploadPolicy bounds expensive content uploads.
	UploadPolicy = Config{Limit: 20, Window: time.Hour}
	// SearchPolicy bounds search query bursts.
	SearchPolicy = Config{Limit: 10, Window: time.Minute}
)

// Result reports the outcome of a single limit check.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time

	allowed bool
}

// Allowed reports whether the request fits within the window limit.
func (r *Result) Allowed() bool {
	return r.allowed
}

// RetryAfter returns how long a denied caller should wait before retrying.
// Zero for allowed requests.
func (r *Result) RetryAfter() time.Duration {
	if r.allowed {
		return 0
	}
	wait := time.Until(r.ResetAt)
	if wait < 0 {
		return 0
	}
	return wait
}

// Limiter checks per-key request counts against a fixed-window policy.
type Limiter struct {
	store Store
	cfg   Config
}

// New creates a Limiter with the given store and policy.
func New(store Store, cfg Config) (*Limiter, error) {
	if store == nil || cfg.Limit <= 0 || cfg.Window <= 0 {
		return nil, ErrInvalidConfig
	}
	return &Limiter{store: store, cfg: cfg}, nil
}

// Allow records one request for key and reports whether it is within the
// limit. A store error means enforcement state is unknown; the caller
// decides the failure policy (the HTTP middleware fails open).
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	count, resetAt, err := l.store.Increment(ctx, key, l.cfg.Window)
	if err != nil {
		return nil, err
	}

	remaining := l.cfg.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Limit:     l.cfg.Limit,
		Remaining: remaining,
		ResetAt:   resetAt,
		allowed:   count <= int64(l.cfg.Limit),
	}, nil
}
