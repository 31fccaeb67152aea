package router_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillspace/shield/core/handler"
	"github.com/skillspace/shield/core/response"
	"github.com/skillspace/shield/core/router"
)

func TestRouter_Dispatch(t *testing.T) {
	t.Parallel()

	rt := router.New[*router.Context]()
	rt.Get("/ping", func(ctx *router.Context) handler.Response {
		return response.String("pong")
	})
	rt.Post("/ping", func(ctx *router.Context) handler.Response {
		return response.String("created")
	})

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("GET", "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())

	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("POST", "/ping", nil))
	assert.Equal(t, "created", rec.Body.String())
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()

	rt := router.New[*router.Context]()
	rt.Get("/only-get", func(ctx *router.Context) handler.Response {
		return response.NoContent()
	})

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("DELETE", "/only-get", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_PrefixRoutes(t *testing.T) {
	t.Parallel()

	rt := router.New[*router.Context]()
	rt.Get("/static/*", func(ctx *router.Context) handler.Response {
		return response.String(ctx.Request().URL.Path)
	})

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("GET", "/static/css/app.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/static/css/app.css", rec.Body.String())
}

func TestRouter_HandleAllMethods(t *testing.T) {
	t.Parallel()

	rt := router.New[*router.Context]()
	rt.Handle("/any", func(ctx *router.Context) handler.Response {
		return response.String(ctx.Request().Method)
	})

	for _, method := range []string{"GET", "POST", "PUT", "DELETE"} {
		rec := httptest.NewRecorder()
		rt.ServeHTTP(rec, httptest.NewRequest(method, "/any", nil))
		assert.Equal(t, method, rec.Body.String())
	}
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) handler.Middleware[*router.Context] {
		return func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
			return func(ctx *router.Context) handler.Response {
				order = append(order, name)
				return next(ctx)
			}
		}
	}

	rt := router.New[*router.Context]()
	rt.Use(mw("first"), mw("second"))
	rt.Get("/", func(ctx *router.Context) handler.Response {
		order = append(order, "handler")
		return response.NoContent()
	})

	rt.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestRouter_UseAfterRoutePanics(t *testing.T) {
	t.Parallel()

	rt := router.New[*router.Context]()
	rt.Get("/", func(ctx *router.Context) handler.Response {
		return response.NoContent()
	})

	assert.Panics(t, func() {
		rt.Use(func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
			return next
		})
	})
}

func TestRouter_InvalidPatternPanics(t *testing.T) {
	t.Parallel()

	rt := router.New[*router.Context]()
	assert.Panics(t, func() {
		rt.Get("no-leading-slash", func(ctx *router.Context) handler.Response {
			return response.NoContent()
		})
	})
}

func TestRouter_PanicRecovery(t *testing.T) {
	t.Parallel()

	var captured error
	rt := router.New[*router.Context](
		router.WithErrorHandler[*router.Context](func(ctx *router.Context, err error) {
			captured = err
			ctx.ResponseWriter().WriteHeader(http.StatusInternalServerError)
		}),
	)
	rt.Get("/boom", func(ctx *router.Context) handler.Response {
		panic("handler exploded")
	})

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("GET", "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var pe router.PanicError
	require.ErrorAs(t, captured, &pe)
	assert.Equal(t, "handler exploded", pe.Value())
	assert.NotEmpty(t, pe.Stack())
}

func TestRouter_NilResponse(t *testing.T) {
	t.Parallel()

	var captured error
	rt := router.New[*router.Context](
		router.WithErrorHandler[*router.Context](func(ctx *router.Context, err error) {
			captured = err
			ctx.ResponseWriter().WriteHeader(http.StatusInternalServerError)
		}),
	)
	rt.Get("/nil", func(ctx *router.Context) handler.Response {
		return nil
	})

	rt.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nil", nil))
	assert.True(t, errors.Is(captured, router.ErrNilResponse))
}

func TestRouter_RenderErrorReachesErrorHandler(t *testing.T) {
	t.Parallel()

	rt := router.New[*router.Context]()
	rt.Get("/fail", func(ctx *router.Context) handler.Response {
		return response.Error(errors.New("storage offline"))
	})

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("GET", "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestContext_Values(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}

	rt := router.New[*router.Context]()
	rt.Use(func(next handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
		return func(ctx *router.Context) handler.Response {
			ctx.SetValue(ctxKey{}, "stored")
			return next(ctx)
		}
	})
	rt.Get("/", func(ctx *router.Context) handler.Response {
		val, _ := ctx.Value(ctxKey{}).(string)
		return response.String(val)
	})

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, "stored", rec.Body.String())
}
