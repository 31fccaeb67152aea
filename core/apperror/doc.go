// Package apperror implements the closed error taxonomy of the defense
// layer and the boundary machinery around it: normalization of foreign
// failures, severity-driven structured logging, monitoring escalation, and
// safe client serialization.
//
// Errors are plain values with a Code discriminant instead of a type
// hierarchy. Construct them through the named factories:
//
//	return apperror.NotFound("lesson")
//	return apperror.Duplicate("enrollment").WithCause(err)
//
// Operational errors (validation, not-found, throttling) are safe to
// describe to clients. Non-operational errors are defects: they are logged
// with full internal context, forwarded to the monitoring sink, and reduced
// to a generic message in the response body. That single distinction
// governs how much detail ever reaches the caller.
package apperror
