package middleware

import (
	"context"

	"github.com/skillspace/shield/core/handler"
	"github.com/skillspace/shield/pkg/clientip"
)

type clientIPCtxKey struct{}

// ClientIP resolves the real client address once per request and stores it
// in the context for the rate limiter, the logger, and error reports.
func ClientIP[C handler.Context]() handler.Middleware[C] {
	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			ctx.SetValue(clientIPCtxKey{}, clientip.GetIP(ctx.Request()))
			return next(ctx)
		}
	}
}

// GetClientIP returns the address stored by ClientIP, or "" when the
// middleware did not run.
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPCtxKey{}).(string)
	return ip
}
