package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/skillspace/shield/core/apperror"
	"github.com/skillspace/shield/core/handler"
	"github.com/skillspace/shield/core/response"
	"github.com/skillspace/shield/pkg/csrf"
)

type csrfConfig struct {
	exemptPrefixes []string
}

// CSRFOption configures the CSRF middleware.
type CSRFOption func(*csrfConfig)

// WithExemptPrefixes skips CSRF validation for paths under the given
// prefixes. Use for webhook endpoints authenticated by signature instead
// of session.
func WithExemptPrefixes(prefixes ...string) CSRFOption {
	return func(c *csrfConfig) {
		c.exemptPrefixes = append(c.exemptPrefixes, prefixes...)
	}
}

// CSRF enforces double-submit token protection. Safe methods (GET, HEAD,
// OPTIONS, TRACE) mint a token cookie when the request doesn't already
// carry a valid one; state-changing methods must present a valid
// cookie/header pair or are rejected with 403.
//
// Unlike the rate limiter, this middleware fails closed: any doubt about
// token validity rejects the request. A forgeable state change is worse
// than a retried one.
func CSRF[C handler.Context](guard *csrf.Guard, opts ...CSRFOption) handler.Middleware[C] {
	cfg := csrfConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			r := ctx.Request()

			for _, prefix := range cfg.exemptPrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					return next(ctx)
				}
			}

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				resp := next(ctx)
				if resp == nil {
					return nil
				}
				return func(w http.ResponseWriter, r *http.Request) error {
					// Safe methods never fail on token work; a request
					// holding a valid token keeps it.
					if !hasValidToken(guard, r) {
						_, _ = guard.Issue(w)
					}
					return resp(w, r)
				}
			}

			if err := guard.Validate(r); err != nil {
				return response.Error(classifyCSRF(err))
			}
			return next(ctx)
		}
	}
}

// hasValidToken reports whether the request already carries a cookie token
// that passes the integrity check, so safe methods don't rotate it on
// every page load.
func hasValidToken(guard *csrf.Guard, r *http.Request) bool {
	cookie, err := r.Cookie(guard.CookieName())
	return err == nil && cookie.Value != "" && guard.Verify(cookie.Value)
}

// classifyCSRF maps guard validation failures onto the error catalog so
// security logs can distinguish the failing conjunct.
func classifyCSRF(err error) apperror.Error {
	switch {
	case errors.Is(err, csrf.ErrTokenMissing):
		return apperror.New(apperror.CodeCSRFTokenMissing, "")
	case errors.Is(err, csrf.ErrHeaderMissing):
		return apperror.New(apperror.CodeCSRFHeaderMissing, "")
	case errors.Is(err, csrf.ErrTokenMismatch):
		return apperror.New(apperror.CodeCSRFTokenMismatch, "")
	default:
		return apperror.New(apperror.CodeCSRFTokenInvalid, "").WithCause(err)
	}
}

// TokenHandler returns a handler that mints a token, sets the cookie, and
// returns the token in the body. SPAs call it once at boot before their
// first state-changing request.
func TokenHandler[C handler.Context](guard *csrf.Guard) handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		token, err := guard.Issue(ctx.ResponseWriter())
		if err != nil {
			return response.Error(apperror.Internal(err))
		}
		return response.JSON(map[string]string{"csrfToken": token})
	}
}
