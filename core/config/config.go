// Package config provides type-safe environment variable loading with
// per-type caching. A .env file is loaded once on first use; parsing is
// delegated to caarlos0/env.
package config

import (
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once

	mu    sync.RWMutex
	cache = make(map[string]any)
)

// Load parses environment variables into cfg. Each configuration type is
// loaded once per process; subsequent calls for the same type return the
// cached value.
func Load[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		// Missing .env files are expected outside local development.
		_ = godotenv.Load()
	})

	key := fmt.Sprintf("%T", *cfg)

	mu.RLock()
	cached, ok := cache[key]
	mu.RUnlock()
	if ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", key, err)
	}

	mu.Lock()
	cache[key] = *cfg
	mu.Unlock()

	return nil
}

// MustLoad is like Load but panics on failure. Useful during startup where
// a missing required variable should halt the process.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
