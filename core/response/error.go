package response

import (
	"net/http"

	"github.com/skillspace/shield/core/handler"
)

// Error returns a handler response that propagates the given error.
// The error is picked up by the router's error handler, which classifies
// it and renders the client-safe body.
func Error(err error) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		return err
	}
}
