package model

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a record cannot be resolved in the system of record
	ErrNotFound = errors.New("not found")
	// ErrUnavailable is returned when the index or the store is temporarily unreachable.
	// Callers decide whether to retry.
	ErrUnavailable = errors.New("service temporarily unavailable")
	// ErrInvariantViolation marks a programming defect, e.g. a compiled query rejected as malformed
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrForbidden is returned when a user targets a collection they do not own
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCriteria is returned when search criteria fail validation
	ErrInvalidCriteria = errors.New("invalid search criteria")
	// ErrCanceled is returned when the operation is canceled by the client
	ErrCanceled = errors.New("operation canceled")
)

// WrapError converts context.Canceled and context.DeadlineExceeded to ErrCanceled.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsCanceled(err) {
		return ErrCanceled
	}
	return err
}

// IsCanceled returns true if the error is due to context cancellation or deadline exceeded.
// Drivers that flatten errors to strings are matched on the message.
func IsCanceled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, ErrCanceled) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "context canceled") || strings.Contains(errStr, "context deadline exceeded")
}

// IsTransient reports whether err is worth retrying by the caller.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
