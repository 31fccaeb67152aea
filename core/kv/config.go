package kv

import "time"

// Config provides environment-based configuration for the Redis-backed
// store. Supports redis:// and rediss:// URL schemes.
type Config struct {
	URL              string        `env:"KV_URL" envDefault:"redis://localhost:6379/0"`
	DialTimeout      time.Duration `env:"KV_DIAL_TIMEOUT" envDefault:"5s"`
	CommandTimeout   time.Duration `env:"KV_COMMAND_TIMEOUT" envDefault:"2s"`
	ReconnectBackoff time.Duration `env:"KV_RECONNECT_BACKOFF" envDefault:"1s"`
	MaxBackoff       time.Duration `env:"KV_RECONNECT_BACKOFF_MAX" envDefault:"30s"`
	ScanBatchSize    int           `env:"KV_SCAN_BATCH_SIZE" envDefault:"500"`
}

// DefaultConfig returns a Config with production-safe defaults.
func DefaultConfig() Config {
	return Config{
		URL:              "redis://localhost:6379/0",
		DialTimeout:      5 * time.Second,
		CommandTimeout:   2 * time.Second,
		ReconnectBackoff: time.Second,
		MaxBackoff:       30 * time.Second,
		ScanBatchSize:    500,
	}
}
