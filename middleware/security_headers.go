package middleware

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/skillspace/shield/core/handler"
)

// Policy declares the security header set for one environment. Header
// values are composed from structured fields so directives are built and
// reviewed as data, not as hand-maintained strings.
type Policy struct {
	// CSP maps directive name to sources. Directives with no sources are
	// emitted bare (e.g. "upgrade-insecure-requests").
	CSP map[string][]string

	// HSTS emits Strict-Transport-Security on HTTPS responses. Keep off in
	// development: browsers pin HSTS per host and a stray localhost header
	// breaks plain-HTTP development for weeks.
	HSTS                  bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool

	FrameOptions   string
	ReferrerPolicy string

	// PermissionsPolicy maps feature to allowlist. An empty list denies the
	// feature entirely: "camera=()".
	PermissionsPolicy map[string][]string

	CrossOriginOpenerPolicy   string
	CrossOriginResourcePolicy string
}

// DevelopmentPolicy relaxes CSP for hot-reload tooling and never sends
// HSTS.
func DevelopmentPolicy() Policy {
	return Policy{
		CSP: map[string][]string{
			"default-src": {"'self'"},
			"script-src":  {"'self'", "'unsafe-inline'", "'unsafe-eval'"},
			"style-src":   {"'self'", "'unsafe-inline'"},
			"img-src":     {"'self'", "data:", "blob:"},
			"connect-src": {"'self'", "ws:", "wss:"},
		},
		FrameOptions:   "DENY",
		ReferrerPolicy: "strict-origin-when-cross-origin",
		PermissionsPolicy: map[string][]string{
			"camera":      {},
			"microphone":  {},
			"geolocation": {},
		},
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
	}
}

// ProductionPolicy is the strict default for browser-facing traffic.
func ProductionPolicy() Policy {
	return Policy{
		CSP: map[string][]string{
			"default-src":     {"'self'"},
			"script-src":      {"'self'"},
			"style-src":       {"'self'"},
			"img-src":         {"'self'", "data:"},
			"connect-src":     {"'self'"},
			"object-src":      {"'none'"},
			"base-uri":        {"'self'"},
			"form-action":     {"'self'"},
			"frame-ancestors": {"'none'"},
		},
		HSTS:                  true,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy: map[string][]string{
			"camera":      {},
			"microphone":  {},
			"geolocation": {},
			"payment":     {},
		},
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
	}
}

// APIPolicy suits JSON-only endpoints never rendered by a browser: a
// deny-all CSP and no frame embedding.
func APIPolicy() Policy {
	return Policy{
		CSP: map[string][]string{
			"default-src":     {"'none'"},
			"frame-ancestors": {"'none'"},
		},
		HSTS:                      true,
		HSTSMaxAge:                31536000,
		HSTSIncludeSubdomains:     true,
		FrameOptions:              "DENY",
		ReferrerPolicy:            "no-referrer",
		CrossOriginResourcePolicy: "same-origin",
	}
}

// SecurityHeaders applies the policy to every response and strips
// server-identifying headers. Register it first in the chain so responses
// short-circuited by later stages (rate-limit denials, CSRF rejections)
// are decorated too. HSTS is emitted only when the request arrived over
// HTTPS, directly or behind a TLS-terminating proxy.
func SecurityHeaders[C handler.Context](policy Policy) handler.Middleware[C] {
	csp := buildCSP(policy.CSP)
	permissions := buildPermissionsPolicy(policy.PermissionsPolicy)
	hsts := buildHSTS(policy)

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			resp := next(ctx)
			if resp == nil {
				return nil
			}
			return func(w http.ResponseWriter, r *http.Request) error {
				h := w.Header()

				if csp != "" {
					h.Set("Content-Security-Policy", csp)
				}
				if hsts != "" && isHTTPS(r) {
					h.Set("Strict-Transport-Security", hsts)
				}
				h.Set("X-Content-Type-Options", "nosniff")
				if policy.FrameOptions != "" {
					h.Set("X-Frame-Options", policy.FrameOptions)
				}
				h.Set("X-XSS-Protection", "1; mode=block")
				if policy.ReferrerPolicy != "" {
					h.Set("Referrer-Policy", policy.ReferrerPolicy)
				}
				if permissions != "" {
					h.Set("Permissions-Policy", permissions)
				}
				if policy.CrossOriginOpenerPolicy != "" {
					h.Set("Cross-Origin-Opener-Policy", policy.CrossOriginOpenerPolicy)
				}
				if policy.CrossOriginResourcePolicy != "" {
					h.Set("Cross-Origin-Resource-Policy", policy.CrossOriginResourcePolicy)
				}
				h.Set("X-DNS-Prefetch-Control", "off")
				h.Del("Server")
				h.Del("X-Powered-By")

				return resp(w, r)
			}
		}
	}
}

// isHTTPS reports whether the request arrived over TLS, directly or via a
// proxy that set X-Forwarded-Proto.
func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}

// buildCSP joins directives sorted by name so the header is deterministic
// across restarts and testable byte for byte.
func buildCSP(directives map[string][]string) string {
	if len(directives) == 0 {
		return ""
	}
	names := make([]string, 0, len(directives))
	for name := range directives {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		if sources := directives[name]; len(sources) > 0 {
			parts = append(parts, name+" "+strings.Join(sources, " "))
		} else {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "; ")
}

// buildPermissionsPolicy joins features sorted by name; an empty allowlist
// denies the feature.
func buildPermissionsPolicy(features map[string][]string) string {
	if len(features) == 0 {
		return ""
	}
	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		allow := features[name]
		if len(allow) == 0 {
			parts = append(parts, name+"=()")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=(%s)", name, strings.Join(allow, " ")))
	}
	return strings.Join(parts, ", ")
}

func buildHSTS(p Policy) string {
	if !p.HSTS {
		return ""
	}
	maxAge := p.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = 31536000
	}
	v := fmt.Sprintf("max-age=%d", maxAge)
	if p.HSTSIncludeSubdomains {
		v += "; includeSubDomains"
	}
	if p.HSTSPreload {
		v += "; preload"
	}
	return v
}
