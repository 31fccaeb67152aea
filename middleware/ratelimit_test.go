package middleware_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillspace/shield/core/handler"
	"github.com/skillspace/shield/core/response"
	"github.com/skillspace/shield/core/router"
	"github.com/skillspace/shield/middleware"
	"github.com/skillspace/shield/pkg/csrf"
	"github.com/skillspace/shield/pkg/ratelimiter"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLimitedRouter(t *testing.T, store ratelimiter.Store, cfg ratelimiter.Config) *router.Router[*router.Context] {
	t.Helper()

	limiter, err := ratelimiter.New(store, cfg)
	require.NoError(t, err)

	rt := router.New[*router.Context]()
	rt.Use(
		middleware.ClientIP[*router.Context](),
		middleware.RateLimit[*router.Context](limiter, discardLogger()),
	)
	rt.Post("/login", func(ctx *router.Context) handler.Response {
		return response.String("ok")
	})
	return rt
}

func loginFrom(ip string) *http.Request {
	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = ip + ":54321"
	return req
}

func TestRateLimit_SixthAuthAttemptRejected(t *testing.T) {
	t.Parallel()

	rt := newLimitedRouter(t, ratelimiter.NewMemoryStore(), ratelimiter.AuthPolicy)

	for i := 1; i <= 5; i++ {
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, loginFrom("192.0.2.1"))
		require.Equal(t, http.StatusOK, rec.Code, "attempt %d should pass", i)
	}

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, loginFrom("192.0.2.1"))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("RateLimit-Remaining"))
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "error")
	assert.Contains(t, body, "retryAfter")
}

func TestRateLimit_HeadersOnAllowedResponses(t *testing.T) {
	t.Parallel()

	rt := newLimitedRouter(t, ratelimiter.NewMemoryStore(), ratelimiter.GeneralPolicy)

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, loginFrom("192.0.2.2"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "100", rec.Header().Get("RateLimit-Limit"))
	assert.Equal(t, "99", rec.Header().Get("RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("RateLimit-Reset"))
	assert.Empty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimit_PerClientIsolation(t *testing.T) {
	t.Parallel()

	rt := newLimitedRouter(t, ratelimiter.NewMemoryStore(), ratelimiter.Config{Limit: 1, Window: time.Minute})

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, loginFrom("192.0.2.3"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, loginFrom("192.0.2.3"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different client still has budget.
	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, loginFrom("192.0.2.4"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type unavailableStore struct{}

func (unavailableStore) Increment(context.Context, string, time.Duration) (int64, time.Time, error) {
	return 0, time.Time{}, ratelimiter.ErrStoreUnavailable
}

func TestRateLimit_FailsOpenWhenStoreDown(t *testing.T) {
	t.Parallel()

	rt := newLimitedRouter(t, unavailableStore{}, ratelimiter.Config{Limit: 1, Window: time.Minute})

	// Far more requests than the limit all pass: availability wins when
	// enforcement state is unknown.
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, loginFrom("192.0.2.5"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimit_ExemptPrefixesNeverThrottled(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.Config{Limit: 1, Window: time.Minute})
	require.NoError(t, err)

	rt := router.New[*router.Context]()
	rt.Use(
		middleware.ClientIP[*router.Context](),
		middleware.RateLimit[*router.Context](limiter, discardLogger(),
			middleware.WithRateLimitExemptPrefixes("/health"),
		),
	)
	rt.Get("/health/live", func(ctx *router.Context) handler.Response {
		return response.String("ok")
	})
	rt.Get("/feed", func(ctx *router.Context) handler.Response {
		return response.String("feed")
	})

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", path, nil)
		req.RemoteAddr = "192.0.2.40:54321"
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, req)
		return rec
	}

	// Well past the limit, exempt paths keep passing and skip counting
	// entirely, so they carry no limiter headers.
	for i := 0; i < 5; i++ {
		rec := get("/health/live")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("RateLimit-Limit"))
	}

	// The same client is still subject to limiting elsewhere.
	assert.Equal(t, http.StatusOK, get("/feed").Code)
	assert.Equal(t, http.StatusTooManyRequests, get("/feed").Code)
}

func TestRateLimit_ExemptPrefixesFromPipelineConfig(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.Config{Limit: 1, Window: time.Minute})
	require.NoError(t, err)
	guard, err := csrf.New(csrfSecret)
	require.NoError(t, err)

	cfg := fullConfig()
	cfg.RateLimitExemptPrefixes = []string{"/health"}

	rt := router.New[*router.Context]()
	rt.Use(middleware.Pipeline[*router.Context](cfg, discardLogger(), limiter, guard)...)
	rt.Get("/health/ready", func(ctx *router.Context) handler.Response {
		return response.String("ok")
	})

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, httptest.NewRequest("GET", "/health/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimit_CustomKeyExtractor(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.Config{Limit: 1, Window: time.Minute})
	require.NoError(t, err)

	rt := router.New[*router.Context]()
	rt.Use(middleware.RateLimit[*router.Context](limiter, discardLogger(),
		middleware.WithKeyExtractor(func(ctx handler.Context) string {
			return ctx.Request().Header.Get("X-API-Key")
		}),
	))
	rt.Get("/data", func(ctx *router.Context) handler.Response {
		return response.String("ok")
	})

	byKey := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/data", nil)
		req.Header.Set("X-API-Key", key)
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, byKey("key-a").Code)
	assert.Equal(t, http.StatusTooManyRequests, byKey("key-a").Code)
	assert.Equal(t, http.StatusOK, byKey("key-b").Code)
}
