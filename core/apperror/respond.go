package apperror

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/skillspace/shield/core/handler"
)

// clientError is the safe client-facing serialization of an Error.
// Internal detail (cause, metadata) appears only outside production.
type clientError struct {
	Error     string         `json:"error"`
	Code      Code           `json:"code"`
	RequestID string         `json:"requestId,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// HandlerOption configures the error handler.
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	production    bool
	requestIDFunc func(handler.Context) string
}

// WithProduction strips internal detail from client responses.
func WithProduction(prod bool) HandlerOption {
	return func(o *handlerOptions) {
		o.production = prod
	}
}

// WithRequestIDFunc overrides how the request id is resolved from the
// context. The default reads the X-Request-ID response header written by
// the correlation middleware, falling back to the inbound header.
func WithRequestIDFunc(fn func(handler.Context) string) HandlerOption {
	return func(o *handlerOptions) {
		if fn != nil {
			o.requestIDFunc = fn
		}
	}
}

// Handler builds the router error handler: every error reaching the
// boundary is normalized, reported, and rendered as the safe JSON body
// with X-Request-ID and X-Error-Code headers.
func Handler[C handler.Context](rep *Reporter, opts ...HandlerOption) handler.ErrorHandler[C] {
	o := handlerOptions{
		requestIDFunc: defaultRequestID,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return func(ctx C, err error) {
		r := ctx.Request()

		appErr := Normalize(err, Context{
			RequestID: o.requestIDFunc(ctx),
			IP:        clientAddr(r),
			UserAgent: r.UserAgent(),
			Route:     r.URL.Path,
			Method:    r.Method,
			Timestamp: time.Now().UTC(),
		})

		rep.Report(ctx, appErr)

		w := ctx.ResponseWriter()
		body := clientError{
			Error:     clientMessage(appErr, o.production),
			Code:      appErr.Code,
			RequestID: appErr.Context.RequestID,
			Timestamp: appErr.Context.Timestamp,
		}
		if !o.production {
			body.Details = appErr.Context.Meta
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("X-Error-Code", string(appErr.Code))
		if appErr.Context.RequestID != "" && w.Header().Get("X-Request-ID") == "" {
			w.Header().Set("X-Request-ID", appErr.Context.RequestID)
		}
		w.WriteHeader(appErr.Status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

// clientMessage reduces non-operational errors to their generic catalog
// message so defects never leak internals to clients.
func clientMessage(e Error, production bool) string {
	if !e.Operational && production {
		return catalog[e.Code].message
	}
	return e.Message
}

func defaultRequestID(ctx handler.Context) string {
	if id := ctx.ResponseWriter().Header().Get("X-Request-ID"); id != "" {
		return id
	}
	return ctx.Request().Header.Get("X-Request-ID")
}

func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
