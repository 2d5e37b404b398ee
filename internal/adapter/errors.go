package adapter

import (
	"errors"
	"fmt"

	fd "fundingdiscovery/internal/domain"
)

// Error wraps an adapter failure with its normalized category.
type Error struct {
	Category   fd.ErrorCategory
	Engine     string
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("adapter %s [%s]: %s: %v", e.Engine, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("adapter %s [%s]: %s", e.Engine, e.Category, e.Message)
}

func (e *Error) Unwrap() error { return e.Underlying }

// Retryable reports whether the error's category is worth retrying under
// the shared retry policy: transient categories only.
func (e *Error) Retryable() bool {
	switch e.Category {
	case fd.ErrorCategoryTimeout, fd.ErrorCategoryRemote5xx:
		return true
	default:
		return false
	}
}

func NewError(category fd.ErrorCategory, engine, message string, underlying error) *Error {
	return &Error{Category: category, Engine: engine, Message: message, Underlying: underlying}
}

// Category extracts the normalized category from any error, defaulting to
// UNKNOWN for unrecognized error values.
func Category(err error) fd.ErrorCategory {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Category
	}
	return fd.ErrorCategoryUnknown
}

func IsRetryable(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Retryable()
	}
	return false
}
