package router

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/skillspace/shield/core/handler"
)

// Router dispatches HTTP requests to registered handlers through the
// middleware chain. Patterns are matched exactly, or by prefix when the
// pattern ends with "/*".
type Router[C handler.Context] struct {
	exact        map[string]map[string]handler.HandlerFunc[C]
	prefixes     []prefixRoute[C]
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(w http.ResponseWriter, r *http.Request) C
	registered   bool
}

type prefixRoute[C handler.Context] struct {
	method  string
	prefix  string
	handler handler.HandlerFunc[C]
}

// New creates a router with the given options.
func New[C handler.Context](opts ...Option[C]) *Router[C] {
	rt := &Router[C]{
		exact:        make(map[string]map[string]handler.HandlerFunc[C]),
		errorHandler: defaultErrorHandler[C],
	}

	for _, opt := range opts {
		opt(rt)
	}

	if rt.newContext == nil {
		rt.newContext = func(w http.ResponseWriter, r *http.Request) C {
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(NewContext(w, r)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}

	return rt
}

// Use appends middleware to the router. All middleware must be registered
// before the first route so the chain order stays deterministic.
func (rt *Router[C]) Use(middlewares ...handler.Middleware[C]) {
	if rt.registered {
		panic("router: all middlewares must be registered before routes")
	}
	rt.middlewares = append(rt.middlewares, middlewares...)
}

// Get registers a handler for GET requests.
func (rt *Router[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	rt.handle(http.MethodGet, pattern, h)
}

// Post registers a handler for POST requests.
func (rt *Router[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	rt.handle(http.MethodPost, pattern, h)
}

// Put registers a handler for PUT requests.
func (rt *Router[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	rt.handle(http.MethodPut, pattern, h)
}

// Patch registers a handler for PATCH requests.
func (rt *Router[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	rt.handle(http.MethodPatch, pattern, h)
}

// Delete registers a handler for DELETE requests.
func (rt *Router[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	rt.handle(http.MethodDelete, pattern, h)
}

// Handle registers a handler for all HTTP methods.
func (rt *Router[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	rt.handle(methodAll, pattern, h)
}

const methodAll = "*"

func (rt *Router[C]) handle(method, pattern string, h handler.HandlerFunc[C]) {
	if len(pattern) == 0 || pattern[0] != '/' {
		panic(ErrInvalidPattern)
	}
	rt.registered = true

	if strings.HasSuffix(pattern, "/*") {
		rt.prefixes = append(rt.prefixes, prefixRoute[C]{
			method:  method,
			prefix:  strings.TrimSuffix(pattern, "*"),
			handler: h,
		})
		return
	}

	if rt.exact[pattern] == nil {
		rt.exact[pattern] = make(map[string]handler.HandlerFunc[C])
	}
	rt.exact[pattern][method] = h
}

// ServeHTTP implements http.Handler.
func (rt *Router[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w)
	ctx := rt.newContext(ww, r)

	// Recover from panics so one broken handler cannot take the process down.
	defer func() {
		if p := recover(); p != nil {
			if ww.Written() {
				return
			}
			rt.errorHandler(ctx, &panicError{value: p, stack: debug.Stack()})
		}
	}()

	fn, err := rt.match(r.Method, r.URL.Path)
	if err != nil {
		rt.errorHandler(ctx, err)
		return
	}

	fn = chain(rt.middlewares, fn)

	resp := fn(ctx)
	if resp == nil {
		rt.errorHandler(ctx, ErrNilResponse)
		return
	}

	if err := resp(ww, r); err != nil {
		if !ww.Written() {
			rt.errorHandler(ctx, err)
		}
	}
}

func (rt *Router[C]) match(method, path string) (handler.HandlerFunc[C], error) {
	if byMethod, ok := rt.exact[path]; ok {
		if fn, ok := byMethod[method]; ok {
			return fn, nil
		}
		if fn, ok := byMethod[methodAll]; ok {
			return fn, nil
		}
		return nil, ErrMethodNotAllowed
	}

	for _, pr := range rt.prefixes {
		if pr.method != method && pr.method != methodAll {
			continue
		}
		if strings.HasPrefix(path, pr.prefix) {
			return pr.handler, nil
		}
	}

	return nil, ErrNotFound
}

// chain builds a single handler from a middleware stack and endpoint.
// Middleware is applied in reverse so the first registered runs first.
func chain[C handler.Context](middlewares []handler.Middleware[C], endpoint handler.HandlerFunc[C]) handler.HandlerFunc[C] {
	h := endpoint
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
