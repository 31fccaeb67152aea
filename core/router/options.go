package router

import (
	"net/http"

	"github.com/skillspace/shield/core/handler"
)

// Option configures a Router.
type Option[C handler.Context] func(*Router[C])

// WithErrorHandler sets a custom error handler for routing, rendering,
// and recovered panic errors.
func WithErrorHandler[C handler.Context](eh handler.ErrorHandler[C]) Option[C] {
	return func(rt *Router[C]) {
		if eh != nil {
			rt.errorHandler = eh
		}
	}
}

// WithContextFactory sets the factory used to build custom context types.
// Required when C is not *Context.
func WithContextFactory[C handler.Context](fn func(w http.ResponseWriter, r *http.Request) C) Option[C] {
	return func(rt *Router[C]) {
		rt.newContext = fn
	}
}
