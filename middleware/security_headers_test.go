package middleware_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillspace/shield/core/handler"
	"github.com/skillspace/shield/core/response"
	"github.com/skillspace/shield/core/router"
	"github.com/skillspace/shield/middleware"
)

func newHeadersRouter(policy middleware.Policy) *router.Router[*router.Context] {
	rt := router.New[*router.Context]()
	rt.Use(middleware.SecurityHeaders[*router.Context](policy))
	rt.Get("/", func(ctx *router.Context) handler.Response {
		return response.String("ok")
	})
	return rt
}

func TestSecurityHeaders_BaselineAlwaysSet(t *testing.T) {
	t.Parallel()

	rt := newHeadersRouter(middleware.ProductionPolicy())
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	h := rec.Header()
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", h.Get("X-XSS-Protection"))
	assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
	assert.Equal(t, "same-origin", h.Get("Cross-Origin-Opener-Policy"))
	assert.Equal(t, "same-origin", h.Get("Cross-Origin-Resource-Policy"))
	assert.Equal(t, "off", h.Get("X-DNS-Prefetch-Control"))
	assert.Empty(t, h.Get("Server"))
	assert.Empty(t, h.Get("X-Powered-By"))
}

func TestSecurityHeaders_HSTSOnlyOverHTTPS(t *testing.T) {
	t.Parallel()

	rt := newHeadersRouter(middleware.ProductionPolicy())

	t.Run("plain http omits hsts", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	})

	t.Run("direct tls gets hsts", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, httptest.NewRequest("GET", "https://app.example.com/", nil))
		assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=31536000")
		assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "includeSubDomains")
	})

	t.Run("forwarded proto gets hsts", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, req)
		assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
	})
}

func TestSecurityHeaders_DevelopmentNeverSendsHSTS(t *testing.T) {
	t.Parallel()

	rt := newHeadersRouter(middleware.DevelopmentPolicy())

	req := httptest.NewRequest("GET", "https://localhost/", nil)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "'unsafe-eval'")
}

func TestSecurityHeaders_CSPDeterministic(t *testing.T) {
	t.Parallel()

	rt := newHeadersRouter(middleware.Policy{
		CSP: map[string][]string{
			"script-src":                {"'self'"},
			"default-src":               {"'self'"},
			"upgrade-insecure-requests": {},
		},
	})

	want := "default-src 'self'; script-src 'self'; upgrade-insecure-requests"
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		require.Equal(t, want, rec.Header().Get("Content-Security-Policy"))
	}
}

func TestSecurityHeaders_PermissionsPolicy(t *testing.T) {
	t.Parallel()

	rt := newHeadersRouter(middleware.Policy{
		PermissionsPolicy: map[string][]string{
			"camera":      {},
			"geolocation": {"self", `"https://maps.example.com"`},
		},
	})

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	got := rec.Header().Get("Permissions-Policy")
	assert.Equal(t, `camera=(), geolocation=(self "https://maps.example.com")`, got)
}

func TestSecurityHeaders_APIPolicyDeniesAll(t *testing.T) {
	t.Parallel()

	rt := newHeadersRouter(middleware.APIPolicy())

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
}

func TestSecurityHeaders_EmptyPolicyOmitsOptionalHeaders(t *testing.T) {
	t.Parallel()

	rt := newHeadersRouter(middleware.Policy{})

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	h := rec.Header()
	assert.Empty(t, h.Get("Content-Security-Policy"))
	assert.Empty(t, h.Get("X-Frame-Options"))
	assert.Empty(t, h.Get("Permissions-Policy"))
	// Baseline hardening still applies.
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
}
