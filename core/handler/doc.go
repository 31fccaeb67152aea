// Package handler defines the request handling contracts shared by the
// router and every middleware in the defense pipeline.
//
// A handler returns a Response function instead of writing directly to the
// ResponseWriter. This lets middleware decorate the eventual response
// (headers, status) after the handler has run, without buffering bodies:
//
//	func hello(ctx *router.Context) handler.Response {
//		return response.JSON(map[string]string{"msg": "hello"})
//	}
//
// Middleware wraps a HandlerFunc and may short-circuit the pipeline by
// returning its own Response instead of calling next.
package handler
