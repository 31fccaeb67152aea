package apperror

import "net/http"

// Code identifies a classified error kind. The set of codes is closed:
// every error leaving the defense layer carries exactly one of these.
type Code string

const (
	// Authentication
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeTokenExpired Code = "TOKEN_EXPIRED"

	// Validation
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeMissingField Code = "MISSING_REQUIRED_FIELD"

	// Storage
	CodeRecordNotFound Code = "RECORD_NOT_FOUND"
	CodeDuplicateEntry Code = "DUPLICATE_ENTRY"
	CodeDatabaseError  Code = "DATABASE_ERROR"

	// External services
	CodeExternalService    Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeTimeout            Code = "TIMEOUT_ERROR"
	CodeConnection         Code = "CONNECTION_ERROR"

	// Security
	CodeCSRFTokenMissing   Code = "CSRF_TOKEN_MISSING"
	CodeCSRFHeaderMissing  Code = "CSRF_HEADER_MISSING"
	CodeCSRFTokenMismatch  Code = "CSRF_TOKEN_MISMATCH"
	CodeCSRFTokenInvalid   Code = "CSRF_TOKEN_INVALID"
	CodeSuspiciousActivity Code = "SUSPICIOUS_ACTIVITY"
	CodeRateLimitExceeded  Code = "RATE_LIMIT_EXCEEDED"

	// Business rules
	CodeBusinessRule Code = "BUSINESS_RULE_VIOLATION"

	// System
	CodeInternal      Code = "INTERNAL_SERVER_ERROR"
	CodeConfiguration Code = "CONFIGURATION_ERROR"
)

// Severity drives log levels and monitoring escalation.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// codeSpec holds the canonical HTTP status, default severity, and
// operational flag for a code.
type codeSpec struct {
	status      int
	severity    Severity
	operational bool
	message     string
}

var catalog = map[Code]codeSpec{
	CodeUnauthorized: {http.StatusUnauthorized, SeverityMedium, true, "authentication required"},
	CodeTokenExpired: {http.StatusUnauthorized, SeverityMedium, true, "authentication token expired"},

	CodeValidation:   {http.StatusBadRequest, SeverityLow, true, "validation failed"},
	CodeMissingField: {http.StatusBadRequest, SeverityLow, true, "required field missing"},

	CodeRecordNotFound: {http.StatusNotFound, SeverityLow, true, "record not found"},
	CodeDuplicateEntry: {http.StatusBadRequest, SeverityMedium, true, "duplicate entry"},
	CodeDatabaseError:  {http.StatusInternalServerError, SeverityHigh, false, "database error"},

	CodeExternalService:    {http.StatusBadGateway, SeverityMedium, true, "external service error"},
	CodeServiceUnavailable: {http.StatusServiceUnavailable, SeverityMedium, true, "service unavailable"},
	CodeTimeout:            {http.StatusGatewayTimeout, SeverityMedium, true, "operation timed out"},
	CodeConnection:         {http.StatusServiceUnavailable, SeverityMedium, true, "connection failed"},

	CodeCSRFTokenMissing:   {http.StatusForbidden, SeverityHigh, true, "csrf token missing"},
	CodeCSRFHeaderMissing:  {http.StatusForbidden, SeverityHigh, true, "csrf header missing"},
	CodeCSRFTokenMismatch:  {http.StatusForbidden, SeverityHigh, true, "csrf token mismatch"},
	CodeCSRFTokenInvalid:   {http.StatusForbidden, SeverityHigh, true, "csrf token invalid"},
	CodeSuspiciousActivity: {http.StatusForbidden, SeverityHigh, true, "suspicious activity detected"},
	CodeRateLimitExceeded:  {http.StatusTooManyRequests, SeverityMedium, true, "rate limit exceeded"},

	CodeBusinessRule: {http.StatusBadRequest, SeverityMedium, true, "business rule violation"},

	CodeInternal:      {http.StatusInternalServerError, SeverityCritical, false, "internal server error"},
	CodeConfiguration: {http.StatusInternalServerError, SeverityCritical, false, "configuration error"},
}

// retryable is the fixed subset of codes callers may retry.
var retryable = map[Code]bool{
	CodeTimeout:            true,
	CodeServiceUnavailable: true,
	CodeConnection:         true,
}

// Retryable reports whether callers may retry operations failing with code.
func Retryable(code Code) bool {
	return retryable[code]
}
