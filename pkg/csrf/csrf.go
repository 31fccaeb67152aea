// Package csrf implements stateless double-submit CSRF protection.
//
// A token is a random salt and an HMAC of that salt under a server secret,
// encoded as "salt-mac". The token travels in a cookie readable by frontend
// JavaScript; state-changing requests must echo it in the X-CSRF-Token
// header. Validation recomputes the HMAC and compares cookie against
// header, so no server-side token storage is needed and any instance
// holding the secret can validate tokens minted by any other.
package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"
)

// Validation failures. Each names a distinct conjunct of the check so
// security logs can distinguish a missing integration from an attack.
var (
	ErrSecretTooShort = errors.New("csrf: secret must be at least 32 characters")
	ErrTokenMissing   = errors.New("csrf: cookie token missing")
	ErrHeaderMissing  = errors.New("csrf: header token missing")
	ErrTokenMismatch  = errors.New("csrf: cookie and header tokens differ")
	ErrTokenInvalid   = errors.New("csrf: token failed integrity check")
)

const (
	// DefaultCookieName is readable by frontend code, hence no __Host- prefix
	// requirement and no HttpOnly.
	DefaultCookieName = "csrf_token"
	// DefaultHeaderName carries the echoed token on unsafe requests.
	DefaultHeaderName = "X-CSRF-Token"
	// DefaultMaxAge bounds token lifetime.
	DefaultMaxAge = time.Hour

	saltBytes = 16
	macChars  = 32
)

// Guard mints and validates double-submit tokens.
type Guard struct {
	secret     []byte
	cookieName string
	headerName string
	maxAge     time.Duration
	secure     bool
}

// Option configures a Guard.
type Option func(*Guard)

// WithCookieName overrides the token cookie name.
func WithCookieName(name string) Option {
	return func(g *Guard) {
		if name != "" {
			g.cookieName = name
		}
	}
}

// WithHeaderName overrides the token header name.
func WithHeaderName(name string) Option {
	return func(g *Guard) {
		if name != "" {
			g.headerName = name
		}
	}
}

// WithMaxAge overrides the cookie lifetime.
func WithMaxAge(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.maxAge = d
		}
	}
}

// WithSecure marks the cookie Secure. Enable everywhere TLS terminates.
func WithSecure(secure bool) Option {
	return func(g *Guard) {
		g.secure = secure
	}
}

// New creates a Guard. The secret must be at least 32 characters so the
// HMAC key has adequate entropy.
func New(secret string, opts ...Option) (*Guard, error) {
	if len(secret) < 32 {
		return nil, ErrSecretTooShort
	}
	g := &Guard{
		secret:     []byte(secret),
		cookieName: DefaultCookieName,
		headerName: DefaultHeaderName,
		maxAge:     DefaultMaxAge,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// CookieName returns the configured cookie name.
func (g *Guard) CookieName() string { return g.cookieName }

// HeaderName returns the configured header name.
func (g *Guard) HeaderName() string { return g.headerName }

// Generate mints a fresh token: hex salt, dash, truncated hex HMAC of the
// salt.
func (g *Guard) Generate() (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	saltHex := hex.EncodeToString(salt)
	return saltHex + "-" + g.sign(saltHex), nil
}

// Issue mints a token and sets it as a cookie on the response. The cookie
// is intentionally not HttpOnly: frontend code must read it to echo the
// token in the request header.
func (g *Guard) Issue(w http.ResponseWriter) (string, error) {
	token, err := g.Generate()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     g.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(g.maxAge.Seconds()),
		Secure:   g.secure,
		HttpOnly: false,
		SameSite: http.SameSiteStrictMode,
	})
	return token, nil
}

// Validate checks the double-submit pair on a state-changing request. All
// comparisons are constant-time. The error identifies exactly which
// conjunct failed.
func (g *Guard) Validate(r *http.Request) error {
	cookie, err := r.Cookie(g.cookieName)
	if err != nil || cookie.Value == "" {
		return ErrTokenMissing
	}
	header := r.Header.Get(g.headerName)
	if header == "" {
		return ErrHeaderMissing
	}
	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
		return ErrTokenMismatch
	}
	if !g.Verify(cookie.Value) {
		return ErrTokenInvalid
	}
	return nil
}

// Verify checks a token's structure and HMAC integrity without looking at
// the request. Used to decide whether an existing cookie can be kept.
func (g *Guard) Verify(token string) bool {
	saltHex, macHex, ok := strings.Cut(token, "-")
	if !ok || len(saltHex) != saltBytes*2 || len(macHex) != macChars {
		return false
	}
	expected := g.sign(saltHex)
	return subtle.ConstantTimeCompare([]byte(macHex), []byte(expected)) == 1
}

// sign computes the truncated hex HMAC-SHA256 of the salt.
func (g *Guard) sign(saltHex string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(saltHex))
	return hex.EncodeToString(mac.Sum(nil))[:macChars]
}
