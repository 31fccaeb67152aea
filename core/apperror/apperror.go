package apperror

import (
	"fmt"
	"maps"
	"time"
)

// Context carries per-request correlation data attached to every classified
// error. It is never persisted beyond the request lifetime.
type Context struct {
	RequestID string         `json:"request_id,omitempty"`
	IP        string         `json:"ip,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	Route     string         `json:"route,omitempty"`
	Method    string         `json:"method,omitempty"`
	Timestamp time.Time      `json:"timestamp,omitempty"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// merge fills empty fields of c from other without overwriting set ones.
func (c Context) merge(other Context) Context {
	if c.RequestID == "" {
		c.RequestID = other.RequestID
	}
	if c.IP == "" {
		c.IP = other.IP
	}
	if c.UserAgent == "" {
		c.UserAgent = other.UserAgent
	}
	if c.Route == "" {
		c.Route = other.Route
	}
	if c.Method == "" {
		c.Method = other.Method
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = other.Timestamp
	}
	if len(other.Meta) > 0 {
		merged := make(map[string]any, len(c.Meta)+len(other.Meta))
		maps.Copy(merged, other.Meta)
		maps.Copy(merged, c.Meta)
		c.Meta = merged
	}
	return c
}

// Error is the single tagged error type of the defense layer. The Code
// discriminant determines the HTTP status, default severity, and whether
// the error is operational (safe to describe to clients) or a defect
// whose detail must never leak.
type Error struct {
	Code        Code
	Message     string
	Status      int
	Severity    Severity
	Operational bool
	Context     Context
	cause       error
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the original cause for errors.Is/As chains.
func (e Error) Unwrap() error {
	return e.cause
}

// StatusCode returns the HTTP status for the error.
func (e Error) StatusCode() int {
	return e.Status
}

// WithMessage returns a copy with a custom message.
func (e Error) WithMessage(msg string) Error {
	e.Message = msg
	return e
}

// WithCause returns a copy carrying the original error for internal logging.
// The cause never appears in client-facing bodies.
func (e Error) WithCause(err error) Error {
	e.cause = err
	return e
}

// WithContext returns a copy with request context merged in. Fields already
// set on the error win over the incoming context.
func (e Error) WithContext(ctx Context) Error {
	e.Context = e.Context.merge(ctx)
	return e
}

// WithMeta returns a copy with an extra metadata entry.
func (e Error) WithMeta(key string, value any) Error {
	meta := make(map[string]any, len(e.Context.Meta)+1)
	maps.Copy(meta, e.Context.Meta)
	meta[key] = value
	e.Context.Meta = meta
	return e
}

// Retryable reports whether callers may retry the failed operation.
func (e Error) Retryable() bool {
	return Retryable(e.Code)
}

// New constructs an Error for the given code with the catalog's canonical
// status, severity, and operational flag. Unknown codes are treated as
// internal defects.
func New(code Code, message string) Error {
	spec, ok := catalog[code]
	if !ok {
		code = CodeInternal
		spec = catalog[CodeInternal]
	}
	if message == "" {
		message = spec.message
	}
	return Error{
		Code:        code,
		Message:     message,
		Status:      spec.status,
		Severity:    spec.severity,
		Operational: spec.operational,
		Context:     Context{Timestamp: time.Now().UTC()},
	}
}
