package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/skillspace/shield/core/handler"
)

type requestIDCtxKey struct{}

// RequestIDHeader carries the correlation ID on requests and responses.
const RequestIDHeader = "X-Request-ID"

type requestIDConfig struct {
	useExisting bool
	generator   func() string
}

// RequestIDOption configures the RequestID middleware.
type RequestIDOption func(*requestIDConfig)

// WithTrustedHeader controls whether an inbound X-Request-ID is reused.
// Enabled by default so gateway-assigned IDs survive; disable on edges
// that face untrusted clients directly.
func WithTrustedHeader(trust bool) RequestIDOption {
	return func(c *requestIDConfig) {
		c.useExisting = trust
	}
}

// WithGenerator overrides ID generation, default UUIDv4.
func WithGenerator(fn func() string) RequestIDOption {
	return func(c *requestIDConfig) {
		if fn != nil {
			c.generator = fn
		}
	}
}

// RequestID assigns each request a correlation ID, stores it in the
// context, and echoes it on the response so clients can quote it in
// support requests. Must run first in the pipeline.
func RequestID[C handler.Context](opts ...RequestIDOption) handler.Middleware[C] {
	cfg := requestIDConfig{
		useExisting: true,
		generator:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			id := ""
			if cfg.useExisting {
				id = ctx.Request().Header.Get(RequestIDHeader)
			}
			if id == "" {
				id = cfg.generator()
			}

			ctx.SetValue(requestIDCtxKey{}, id)
			// Set eagerly so the response header is present even when a
			// later stage short-circuits or the error handler renders.
			ctx.ResponseWriter().Header().Set(RequestIDHeader, id)

			resp := next(ctx)
			if resp == nil {
				return nil
			}
			return func(w http.ResponseWriter, r *http.Request) error {
				w.Header().Set(RequestIDHeader, id)
				return resp(w, r)
			}
		}
	}
}

// GetRequestID returns the correlation ID stored by RequestID, or "" when
// the middleware did not run.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}
