// Package middleware provides the request defense pipeline: request
// correlation, client IP resolution, structured request logging, rate
// limiting, CSRF protection, and security response headers.
//
// Ordering is significant and fixed. Security headers register outermost
// so every response carries them, including denials short-circuited by
// inner stages; correlation and IP resolution run next so every later
// stage (and the error handler) can tag its output; rate limiting runs
// before CSRF so abusive traffic is shed before any token work:
//
//	r.Use(
//		middleware.SecurityHeaders[*router.Context](middleware.ProductionPolicy()),
//		middleware.RequestID[*router.Context](),
//		middleware.ClientIP[*router.Context](),
//		middleware.Logging[*router.Context](log),
//		middleware.RateLimit[*router.Context](limiter, log),
//		middleware.CSRF[*router.Context](guard),
//	)
//
// Each middleware degrades according to its threat model: the rate limiter
// fails open when its store is unreachable (availability over strictness),
// the CSRF guard fails closed on any validation doubt (strictness over
// availability).
package middleware
