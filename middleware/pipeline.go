package middleware

import (
	"log/slog"

	"github.com/skillspace/shield/core/handler"
	"github.com/skillspace/shield/pkg/csrf"
	"github.com/skillspace/shield/pkg/ratelimiter"
)

// Pipeline composes the defense middleware in the canonical order,
// honoring the config's feature flags. Disabled components and components
// with missing dependencies (nil limiter or guard) are skipped.
//
// The order is fixed: SecurityHeaders, RequestID, ClientIP, Logging,
// RateLimit, CSRF. SecurityHeaders registers outermost so every response
// carries the header set, including denials short-circuited by inner
// stages; correlation precedes everything that logs; limiting precedes
// CSRF so abusive traffic never reaches token validation.
func Pipeline[C handler.Context](cfg Config, log *slog.Logger, limiter *ratelimiter.Limiter, guard *csrf.Guard) []handler.Middleware[C] {
	var mws []handler.Middleware[C]

	if cfg.SecurityHeadersEnabled {
		policy := DevelopmentPolicy()
		if cfg.IsProduction() {
			policy = ProductionPolicy()
		}
		mws = append(mws, SecurityHeaders[C](policy))
	}
	if cfg.RequestIDEnabled {
		mws = append(mws, RequestID[C]())
	}
	if cfg.ClientIPEnabled {
		mws = append(mws, ClientIP[C]())
	}
	if cfg.LoggingEnabled && log != nil {
		mws = append(mws, Logging[C](log))
	}
	if cfg.RateLimitEnabled && limiter != nil && log != nil {
		mws = append(mws, RateLimit[C](limiter, log,
			WithRateLimitExemptPrefixes(cfg.RateLimitExemptPrefixes...)))
	}
	if cfg.CSRFEnabled && guard != nil {
		mws = append(mws, CSRF[C](guard, WithExemptPrefixes(cfg.CSRFExemptPrefixes...)))
	}

	return mws
}
