package apperror

import "fmt"

// Named constructors keep call sites terse while routing everything through
// the closed code catalog.

// Validation constructs a low-severity input validation error.
func Validation(message string) Error {
	return New(CodeValidation, message)
}

// MissingField reports an absent required field by name.
func MissingField(field string) Error {
	return New(CodeMissingField, fmt.Sprintf("required field %q is missing", field)).
		WithMeta("field", field)
}

// Unauthorized constructs an authentication failure.
func Unauthorized(message string) Error {
	return New(CodeUnauthorized, message)
}

// TokenExpired reports an expired authentication token.
func TokenExpired() Error {
	return New(CodeTokenExpired, "")
}

// NotFound reports a missing record for the named entity.
func NotFound(entity string) Error {
	return New(CodeRecordNotFound, fmt.Sprintf("%s not found", entity)).
		WithMeta("entity", entity)
}

// Duplicate reports a unique-constraint conflict for the named entity.
func Duplicate(entity string) Error {
	return New(CodeDuplicateEntry, fmt.Sprintf("%s already exists", entity)).
		WithMeta("entity", entity)
}

// Database wraps a storage-layer failure; the driver error is preserved as
// cause for internal logs only.
func Database(err error) Error {
	return New(CodeDatabaseError, "").WithCause(err)
}

// External wraps a downstream service failure.
func External(service string, err error) Error {
	return New(CodeExternalService, fmt.Sprintf("%s request failed", service)).
		WithMeta("service", service).
		WithCause(err)
}

// Unavailable reports a dependency that is temporarily down. Retryable.
func Unavailable(service string) Error {
	return New(CodeServiceUnavailable, fmt.Sprintf("%s unavailable", service)).
		WithMeta("service", service)
}

// Timeout reports a timed-out operation. Retryable.
func Timeout(op string) Error {
	return New(CodeTimeout, fmt.Sprintf("%s timed out", op)).WithMeta("operation", op)
}

// Suspicious flags a request exhibiting abusive or anomalous behavior.
func Suspicious(reason string) Error {
	return New(CodeSuspiciousActivity, "").WithMeta("reason", reason)
}

// RateLimited reports a throttled request with the seconds to wait.
func RateLimited(retryAfterSeconds int) Error {
	return New(CodeRateLimitExceeded, "").WithMeta("retry_after", retryAfterSeconds)
}

// BusinessRule reports a violated domain rule.
func BusinessRule(message string) Error {
	return New(CodeBusinessRule, message)
}

// Internal wraps an unexpected defect. Non-operational: the cause is logged
// but never shown to clients.
func Internal(err error) Error {
	return New(CodeInternal, "").WithCause(err)
}

// Configuration reports broken or missing process configuration.
func Configuration(message string) Error {
	return New(CodeConfiguration, message)
}
