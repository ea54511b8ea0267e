package checkservice

import (
	"errors"
	"fmt"
)

// ErrorCategory defines the normalized failure taxonomy for check-service calls
type ErrorCategory string

const (
	// ErrorTimeout indicates the service took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates a malformed request or response body
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates the API key was refused
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorOutage indicates the service is unavailable or the breaker is open
	ErrorOutage ErrorCategory = "outage"

	// ErrorNotFound indicates the job does not exist
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorRateLimited indicates too many requests
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorInternal indicates an unexpected client-side failure
	ErrorInternal ErrorCategory = "internal"
)

// Error wraps check-service failures with normalized categorization
type Error struct {
	Category   ErrorCategory
	Operation  string
	StatusCode int
	Message    string
	Underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("check service %s [%s]: %s: %v", e.Operation, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("check service %s [%s]: %s", e.Operation, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError creates a categorized error. Timeouts, outages and rate limiting
// are retryable.
func NewError(category ErrorCategory, operation, message string, underlying error) *Error {
	retryable := category == ErrorTimeout ||
		category == ErrorOutage ||
		category == ErrorRateLimited

	return &Error{
		Category:   category,
		Operation:  operation,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable checks if an error is worth retrying
func IsRetryable(err error) bool {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return false
}

// CategoryOf extracts the error category, defaulting to ErrorInternal.
func CategoryOf(err error) ErrorCategory {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ErrorInternal
}

// IsNotFound reports whether err is a not_found check-service error.
func IsNotFound(err error) bool {
	return CategoryOf(err) == ErrorNotFound
}
