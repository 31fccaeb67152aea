package router

import (
	"net/http"
	"time"
)

// Context is the default request context implementation. It delegates
// context.Context methods to the request's context and keeps per-request
// values set by middleware (request id, client ip) in a local map.
type Context struct {
	w      http.ResponseWriter
	r      *http.Request
	values map[any]any
}

// NewContext creates a Context for the given response writer and request.
func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{w: w, r: r}
}

func (c *Context) Deadline() (deadline time.Time, ok bool) {
	return c.r.Context().Deadline()
}

func (c *Context) Done() <-chan struct{} {
	return c.r.Context().Done()
}

func (c *Context) Err() error {
	return c.r.Context().Err()
}

// Value returns a per-request value set via SetValue, falling back to the
// underlying request context.
func (c *Context) Value(key any) any {
	if v, ok := c.values[key]; ok {
		return v
	}
	return c.r.Context().Value(key)
}

// SetValue stores a per-request value. Values are scoped to this context
// and are not propagated to the underlying request context.
func (c *Context) SetValue(key, val any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = val
}

// Request returns the *http.Request associated with the context.
func (c *Context) Request() *http.Request {
	return c.r
}

// ResponseWriter returns the http.ResponseWriter associated with the context.
func (c *Context) ResponseWriter() http.ResponseWriter {
	return c.w
}
