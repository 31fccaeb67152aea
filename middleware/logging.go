package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/skillspace/shield/core/handler"
	"github.com/skillspace/shield/core/logger"
)

type loggingConfig struct {
	slowThreshold time.Duration
}

// LoggingOption configures the Logging middleware.
type LoggingOption func(*loggingConfig)

// WithSlowThreshold sets the duration past which a completed request is
// logged at warn level. Default 1s; zero disables slow detection.
func WithSlowThreshold(d time.Duration) LoggingOption {
	return func(c *loggingConfig) {
		c.slowThreshold = d
	}
}

// statusRecorder is the subset of the router's response writer used to
// read the final status after rendering.
type statusRecorder interface {
	Status() int
	Written() bool
}

// Logging emits one structured line per completed request: method, path,
// status, duration, client IP, and correlation ID. Requests that end 5xx
// log at error level, 4xx and slow requests at warn.
func Logging[C handler.Context](log *slog.Logger, opts ...LoggingOption) handler.Middleware[C] {
	cfg := loggingConfig{slowThreshold: time.Second}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			start := time.Now()
			resp := next(ctx)
			if resp == nil {
				return nil
			}

			requestID := GetRequestID(ctx)
			ip := GetClientIP(ctx)

			return func(w http.ResponseWriter, r *http.Request) error {
				err := resp(w, r)
				elapsed := time.Since(start)

				status := http.StatusOK
				if rec, ok := w.(statusRecorder); ok && rec.Written() {
					status = rec.Status()
				}

				level := slog.LevelInfo
				switch {
				case status >= http.StatusInternalServerError:
					level = slog.LevelError
				case status >= http.StatusBadRequest:
					level = slog.LevelWarn
				case cfg.slowThreshold > 0 && elapsed >= cfg.slowThreshold:
					level = slog.LevelWarn
				}

				log.LogAttrs(ctx, level, "request completed",
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.StatusCode(status),
					logger.Duration(elapsed),
					logger.ClientIP(ip),
					logger.RequestID(requestID),
					logger.UserAgent(r.UserAgent()),
					logger.Error(err),
				)
				return err
			}
		}
	}
}
