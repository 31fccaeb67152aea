package kv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skillspace/shield/core/logger"
)

// Redis implements Store on a Redis server with total graceful degradation.
// The underlying client is created once; after an operation failure the
// store backs off with capped exponential delay, answering every call with
// the failure-safe value until the next reconnection attempt is due.
type Redis struct {
	cfg Config
	log *slog.Logger
	rdb *redis.Client

	mu          sync.Mutex
	backoff     time.Duration
	nextAttempt time.Time
}

// RedisOption configures the Redis store.
type RedisOption func(*Redis)

// WithLogger sets the logger for degradation warnings.
func WithLogger(log *slog.Logger) RedisOption {
	return func(s *Redis) {
		if log != nil {
			s.log = log
		}
	}
}

// NewRedis creates a Redis-backed store. No connection is made until the
// first operation; a malformed URL is the only construction failure.
func NewRedis(cfg Config, opts ...RedisOption) (*Redis, error) {
	if cfg.URL == "" {
		return nil, errors.New("kv: empty connection URL")
	}
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("kv: parse connection URL: %w", err)
	}

	if cfg.DialTimeout > 0 {
		opt.DialTimeout = cfg.DialTimeout
	}
	if cfg.CommandTimeout > 0 {
		opt.ReadTimeout = cfg.CommandTimeout
		opt.WriteTimeout = cfg.CommandTimeout
	}

	s := &Redis{
		cfg: cfg,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		rdb: redis.NewClient(opt),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the underlying client.
func (s *Redis) Close() error {
	return s.rdb.Close()
}

// available reports whether operations should reach the server, honoring
// the reconnection backoff window after failures.
func (s *Redis) available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().After(s.nextAttempt)
}

// fail records an operation failure and extends the backoff window.
func (s *Redis) fail(op string, err error) {
	s.mu.Lock()
	if s.backoff == 0 {
		s.backoff = s.cfg.ReconnectBackoff
	} else {
		s.backoff *= 2
		if limit := s.cfg.MaxBackoff; limit > 0 && s.backoff > limit {
			s.backoff = limit
		}
	}
	s.nextAttempt = time.Now().Add(s.backoff)
	wait := s.backoff
	s.mu.Unlock()

	s.log.Warn("kv store unavailable, degrading",
		logger.Component("kv"),
		logger.Key("op", op),
		logger.Error(err),
		slog.Duration("retry_in", wait),
	)
}

// recovered clears the backoff state after a successful operation.
func (s *Redis) recovered() {
	s.mu.Lock()
	s.backoff = 0
	s.nextAttempt = time.Time{}
	s.mu.Unlock()
}

// opCtx bounds a single command. A timeout is treated identically to a
// connection failure by the caller.
func (s *Redis) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.CommandTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.CommandTimeout)
}

func (s *Redis) Get(ctx context.Context, key string) (string, bool) {
	if !s.available() {
		return "", false
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		s.recovered()
		return "", false
	}
	if err != nil {
		s.fail("get", err)
		return "", false
	}
	s.recovered()
	return val, true
}

func (s *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) bool {
	if !s.available() {
		return false
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		s.fail("set", err)
		return false
	}
	s.recovered()
	return true
}

func (s *Redis) Del(ctx context.Context, keys ...string) int {
	if len(keys) == 0 || !s.available() {
		return 0
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	n, err := s.rdb.Del(ctx, keys...).Result()
	if err != nil {
		s.fail("del", err)
		return 0
	}
	s.recovered()
	return int(n)
}

func (s *Redis) Exists(ctx context.Context, key string) bool {
	if !s.available() {
		return false
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		s.fail("exists", err)
		return false
	}
	s.recovered()
	return n > 0
}

func (s *Redis) Expire(ctx context.Context, key string, ttl time.Duration) bool {
	if !s.available() {
		return false
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	ok, err := s.rdb.Expire(ctx, key, ttl).Result()
	if err != nil {
		s.fail("expire", err)
		return false
	}
	s.recovered()
	return ok
}

func (s *Redis) TTL(ctx context.Context, key string) time.Duration {
	if !s.available() {
		return -1
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	ttl, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		s.fail("ttl", err)
		return -1
	}
	s.recovered()
	if ttl < 0 {
		return -1
	}
	return ttl
}

func (s *Redis) Incr(ctx context.Context, key string) int64 {
	if !s.available() {
		return 0
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		s.fail("incr", err)
		return 0
	}
	s.recovered()
	return n
}

func (s *Redis) Decr(ctx context.Context, key string) int64 {
	if !s.available() {
		return 0
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	n, err := s.rdb.Decr(ctx, key).Result()
	if err != nil {
		s.fail("decr", err)
		return 0
	}
	s.recovered()
	return n
}

// Clear deletes all keys matching pattern using batched SCAN, so large
// keyspaces are never blocked by a KEYS call.
func (s *Redis) Clear(ctx context.Context, pattern string) int {
	if !s.available() {
		return 0
	}

	batch := s.cfg.ScanBatchSize
	if batch <= 0 {
		batch = 500
	}

	deleted := 0
	var cursor uint64
	for {
		opCtx, cancel := s.opCtx(ctx)
		keys, next, err := s.rdb.Scan(opCtx, cursor, pattern, int64(batch)).Result()
		cancel()
		if err != nil {
			s.fail("clear", err)
			return deleted
		}

		if len(keys) > 0 {
			opCtx, cancel := s.opCtx(ctx)
			n, err := s.rdb.Del(opCtx, keys...).Result()
			cancel()
			if err != nil {
				s.fail("clear", err)
				return deleted
			}
			deleted += int(n)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}
	s.recovered()
	return deleted
}

func (s *Redis) HGet(ctx context.Context, key, field string) (string, bool) {
	if !s.available() {
		return "", false
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	val, err := s.rdb.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		s.recovered()
		return "", false
	}
	if err != nil {
		s.fail("hget", err)
		return "", false
	}
	s.recovered()
	return val, true
}

func (s *Redis) HSet(ctx context.Context, key, field, value string) bool {
	if !s.available() {
		return false
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if err := s.rdb.HSet(ctx, key, field, value).Err(); err != nil {
		s.fail("hset", err)
		return false
	}
	s.recovered()
	return true
}

func (s *Redis) HDel(ctx context.Context, key string, fields ...string) int {
	if len(fields) == 0 || !s.available() {
		return 0
	}
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	n, err := s.rdb.HDel(ctx, key, fields...).Result()
	if err != nil {
		s.fail("hdel", err)
		return 0
	}
	s.recovered()
	return int(n)
}

// Health probes the server with PING and reports status with latency.
// Suitable for readiness endpoints.
func (s *Redis) Health(ctx context.Context) Health {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	start := time.Now()
	err := s.rdb.Ping(ctx).Err()
	latency := time.Since(start)

	if err != nil {
		s.fail("ping", err)
		return Health{Healthy: false, Latency: latency, Err: err}
	}
	s.recovered()
	return Health{Healthy: true, Latency: latency}
}
