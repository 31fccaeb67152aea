// Package kv provides the key-value store abstraction shared by the rate
// limiter, the cache-aside helper, and any component needing cross-instance
// state.
//
// The design goal is total graceful degradation: a cache outage must slow
// the product down, never break it. No Store method returns an error; each
// one swallows connection, timeout, and protocol failures, logs a warning,
// and answers with the failure-safe zero value. Reconnection attempts are
// spaced with capped exponential backoff so a down server is not hammered
// on every request.
//
//	store, err := kv.NewRedis(cfg, kv.WithLogger(log))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	if v, ok := store.Get(ctx, "user:42:profile"); ok {
//		// cache hit
//	}
package kv
