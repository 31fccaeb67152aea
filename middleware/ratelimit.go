package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/skillspace/shield/core/handler"
	"github.com/skillspace/shield/core/logger"
	"github.com/skillspace/shield/core/response"
	"github.com/skillspace/shield/pkg/clientip"
	"github.com/skillspace/shield/pkg/ratelimiter"
)

// KeyExtractor derives the rate-limit key from a request context. The
// default keys by client IP.
type KeyExtractor func(ctx handler.Context) string

type rateLimitConfig struct {
	keyFunc        KeyExtractor
	exemptPrefixes []string
}

// RateLimitOption configures the RateLimit middleware.
type RateLimitOption func(*rateLimitConfig)

// WithKeyExtractor overrides rate-limit keying, e.g. to key authenticated
// routes by user ID instead of IP.
func WithKeyExtractor(fn KeyExtractor) RateLimitOption {
	return func(c *rateLimitConfig) {
		if fn != nil {
			c.keyFunc = fn
		}
	}
}

// WithRateLimitExemptPrefixes skips limiting for paths under the given
// prefixes. Use for health checks and internal endpoints that must never
// be throttled.
func WithRateLimitExemptPrefixes(prefixes ...string) RateLimitOption {
	return func(c *rateLimitConfig) {
		c.exemptPrefixes = append(c.exemptPrefixes, prefixes...)
	}
}

// RateLimit enforces the limiter's fixed-window policy per key. Every
// response carries RateLimit-* (and legacy X-RateLimit-*) headers; denied
// requests get 429 with Retry-After.
//
// When the limiter's store is unreachable the middleware fails open:
// the request proceeds uncounted and a warning is logged. Shedding all
// traffic because the counter store is down would turn a cache outage
// into a full outage.
func RateLimit[C handler.Context](limiter *ratelimiter.Limiter, log *slog.Logger, opts ...RateLimitOption) handler.Middleware[C] {
	cfg := rateLimitConfig{
		keyFunc: func(ctx handler.Context) string {
			if ip := GetClientIP(ctx); ip != "" {
				return ip
			}
			return clientip.GetIP(ctx.Request())
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			for _, prefix := range cfg.exemptPrefixes {
				if strings.HasPrefix(ctx.Request().URL.Path, prefix) {
					return next(ctx)
				}
			}

			key := cfg.keyFunc(ctx)

			result, err := limiter.Allow(ctx, key)
			if err != nil {
				log.WarnContext(ctx, "rate limit check failed, allowing request",
					logger.Component("ratelimit"),
					logger.Error(err),
					logger.RequestID(GetRequestID(ctx)),
				)
				return next(ctx)
			}

			if !result.Allowed() {
				retryAfter := int(result.RetryAfter().Round(time.Second).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				log.InfoContext(ctx, "rate limit exceeded",
					logger.Component("ratelimit"),
					logger.ClientIP(GetClientIP(ctx)),
					logger.Path(ctx.Request().URL.Path),
					logger.RequestID(GetRequestID(ctx)),
				)
				return func(w http.ResponseWriter, r *http.Request) error {
					setRateLimitHeaders(w.Header(), result)
					w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
					return response.JSONWithStatus(map[string]any{
						"error":      "Too many requests, please try again later",
						"retryAfter": retryAfter,
					}, http.StatusTooManyRequests)(w, r)
				}
			}

			resp := next(ctx)
			if resp == nil {
				return nil
			}
			return func(w http.ResponseWriter, r *http.Request) error {
				setRateLimitHeaders(w.Header(), result)
				return resp(w, r)
			}
		}
	}
}

// setRateLimitHeaders writes both the draft-standard and the widely
// deployed legacy header names.
func setRateLimitHeaders(h http.Header, result *ratelimiter.Result) {
	limit := strconv.Itoa(result.Limit)
	remaining := strconv.Itoa(result.Remaining)
	reset := strconv.FormatInt(result.ResetAt.Unix(), 10)

	h.Set("RateLimit-Limit", limit)
	h.Set("RateLimit-Remaining", remaining)
	h.Set("RateLimit-Reset", reset)
	h.Set("X-RateLimit-Limit", limit)
	h.Set("X-RateLimit-Remaining", remaining)
	h.Set("X-RateLimit-Reset", reset)
}
