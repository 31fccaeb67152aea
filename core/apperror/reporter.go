package apperror

import (
	"context"
	"io"
	"log/slog"

	"github.com/skillspace/shield/core/logger"
)

// Monitor receives high and critical severity errors for operational
// alerting. Implementations must not block the request path.
type Monitor interface {
	Notify(ctx context.Context, e Error)
}

// NoopMonitor discards all notifications. Used when no alerting sink is
// configured.
type NoopMonitor struct{}

func (NoopMonitor) Notify(context.Context, Error) {}

// Reporter emits one structured log line per classified error and escalates
// high/critical errors to the monitoring sink.
type Reporter struct {
	log         *slog.Logger
	monitor     Monitor
	development bool
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithMonitor sets the alerting sink for high/critical errors.
func WithMonitor(m Monitor) ReporterOption {
	return func(r *Reporter) {
		if m != nil {
			r.monitor = m
		}
	}
}

// WithDevelopment enables logging of internal causes and metadata.
// Outside development these are stripped before the line is emitted.
func WithDevelopment(dev bool) ReporterOption {
	return func(r *Reporter) {
		r.development = dev
	}
}

// NewReporter creates a Reporter writing to log.
func NewReporter(log *slog.Logger, opts ...ReporterOption) *Reporter {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Reporter{log: log, monitor: NoopMonitor{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report logs e at the level implied by its severity and forwards
// high/critical errors to the monitor.
func (r *Reporter) Report(ctx context.Context, e Error) {
	attrs := []slog.Attr{
		logger.ErrorCode(string(e.Code)),
		logger.Severity(string(e.Severity)),
		logger.StatusCode(e.Status),
		slog.Bool("operational", e.Operational),
		logger.RequestID(e.Context.RequestID),
		logger.Method(e.Context.Method),
		logger.Path(e.Context.Route),
		logger.ClientIP(e.Context.IP),
		logger.UserAgent(e.Context.UserAgent),
	}

	if r.development {
		if cause := e.Unwrap(); cause != nil {
			attrs = append(attrs, logger.Error(cause))
		}
		if len(e.Context.Meta) > 0 {
			attrs = append(attrs, slog.Any("meta", e.Context.Meta))
		}
	}

	r.log.LogAttrs(ctx, levelFor(e.Severity), e.Message, attrs...)

	if e.Severity == SeverityHigh || e.Severity == SeverityCritical {
		r.monitor.Notify(ctx, e)
	}
}

func levelFor(s Severity) slog.Level {
	switch s {
	case SeverityCritical, SeverityHigh:
		return slog.LevelError
	case SeverityMedium:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
