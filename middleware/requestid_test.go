package middleware_test

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillspace/shield/core/handler"
	"github.com/skillspace/shield/core/response"
	"github.com/skillspace/shield/core/router"
	"github.com/skillspace/shield/middleware"
)

func TestRequestID_GeneratesUUID(t *testing.T) {
	t.Parallel()

	var seen string
	rt := router.New[*router.Context]()
	rt.Use(middleware.RequestID[*router.Context]())
	rt.Get("/", func(ctx *router.Context) handler.Response {
		seen = middleware.GetRequestID(ctx)
		return response.NoContent()
	})

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	require.NotEmpty(t, seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestRequestID_ReusesInboundHeader(t *testing.T) {
	t.Parallel()

	rt := router.New[*router.Context]()
	rt.Use(middleware.RequestID[*router.Context]())
	rt.Get("/", func(ctx *router.Context) handler.Response {
		return response.String(middleware.GetRequestID(ctx))
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "gateway-assigned-id")
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, "gateway-assigned-id", rec.Body.String())
	assert.Equal(t, "gateway-assigned-id", rec.Header().Get("X-Request-ID"))
}

func TestRequestID_UntrustedHeaderIgnored(t *testing.T) {
	t.Parallel()

	rt := router.New[*router.Context]()
	rt.Use(middleware.RequestID[*router.Context](middleware.WithTrustedHeader(false)))
	rt.Get("/", func(ctx *router.Context) handler.Response {
		return response.String(middleware.GetRequestID(ctx))
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "spoofed")
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.NotEqual(t, "spoofed", rec.Body.String())
	assert.NotEmpty(t, rec.Body.String())
}

func TestRequestID_CustomGenerator(t *testing.T) {
	t.Parallel()

	rt := router.New[*router.Context]()
	rt.Use(middleware.RequestID[*router.Context](middleware.WithGenerator(func() string {
		return "fixed-id"
	})))
	rt.Get("/", func(ctx *router.Context) handler.Response {
		return response.NoContent()
	})

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}

func TestGetRequestID_WithoutMiddleware(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	ctx := router.NewContext(httptest.NewRecorder(), r)
	assert.Empty(t, middleware.GetRequestID(ctx))
}

func TestClientIP_StoredInContext(t *testing.T) {
	t.Parallel()

	rt := router.New[*router.Context]()
	rt.Use(middleware.ClientIP[*router.Context]())
	rt.Get("/", func(ctx *router.Context) handler.Response {
		return response.String(middleware.GetClientIP(ctx))
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.2")
	req.RemoteAddr = "10.0.0.1:443"
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, "198.51.100.1", rec.Body.String())
}
