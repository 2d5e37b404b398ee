// Package fderrors defines the typed error taxonomy shared across the
// funding-discovery core. Every error that crosses a package boundary is
// expected to be, or wrap, a *Error so that transport and event-publishing
// code can translate it without type-switching on strings.
package fderrors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-checkable error classification.
type Code string

const (
	CodeInvalidInput   Code = "INVALID_INPUT"
	CodeNotFound       Code = "NOT_FOUND"
	CodeConflict       Code = "CONFLICT"
	CodeUnavailable    Code = "UNAVAILABLE"
	CodeTimeout        Code = "TIMEOUT"
	CodeRateLimited    Code = "RATE_LIMITED"
	CodeCircuitOpen    Code = "CIRCUIT_OPEN"
	CodeAuth           Code = "AUTH"
	CodeParse          Code = "PARSE"
	CodeInternal       Code = "INTERNAL"
	CodeAlreadyInState Code = "ALREADY_IN_STATE"
)

// Error is the funding-discovery core's error envelope. It carries a stable
// Code for programmatic handling, a human message, and an optional wrapped
// cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the category this error belongs to is worth
// retrying under the adapter layer's backoff policy.
func (e *Error) Retryable() bool {
	switch e.Code {
	case CodeTimeout, CodeUnavailable:
		return true
	default:
		return false
	}
}

// HasCode reports whether err is, or wraps, an *Error with the given code.
func HasCode(err error, code Code) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code == code
	}
	return false
}

// GetCode extracts the Code from err, returning CodeInternal when err is not
// a classified *Error.
func GetCode(err error) Code {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return CodeInternal
}
