package apperror

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"strings"
)

// Normalize converts any error crossing the layer boundary into a
// classified Error with request context attached. Already-typed errors pass
// through with context merged. Classification is idempotent: normalizing
// the same error twice yields the same code, status, and severity.
func Normalize(err error, reqCtx Context) Error {
	var appErr Error
	if errors.As(err, &appErr) {
		return appErr.WithContext(reqCtx)
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return New(CodeRecordNotFound, "").WithCause(err).WithContext(reqCtx)

	case isDuplicateKey(err):
		return New(CodeDuplicateEntry, "").WithCause(err).WithContext(reqCtx)

	case errors.Is(err, context.DeadlineExceeded) || isNetTimeout(err):
		return New(CodeTimeout, "").WithCause(err).WithContext(reqCtx)

	case isConnectionRefused(err):
		return New(CodeConnection, "").WithCause(err).WithContext(reqCtx)
	}

	// Unrecognized failures are defects: critical, non-operational, and
	// reduced to a generic message for clients.
	return Internal(err).WithContext(reqCtx)
}

// isDuplicateKey detects unique-constraint violations across common SQL
// drivers by message, since this layer must not depend on driver packages.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry")
}

func isNetTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionRefused(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
