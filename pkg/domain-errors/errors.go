// Package domainerrors defines coded domain errors shared by services and call sites.
//
// A domain error carries a stable Code for programmatic handling and a
// human-readable Message suitable for display. Infrastructure facts (not found,
// unavailable) live in pkg/platform/sentinel and are translated into domain
// errors at the service boundary.
package domainerrors

import (
	"errors"
	"strings"
)

// Code identifies a class of domain failure.
type Code string

const (
	CodeValidation         Code = "validation_failed"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeRejected           Code = "rejected"
	CodeInvariantViolation Code = "invariant_violation"
	CodeNotFound           Code = "not_found"
	CodeInternal           Code = "internal_error"
)

// Error is a coded domain error. Details holds secondary messages, e.g. the
// individual violations of a failed form validation.
type Error struct {
	Code    Code
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	if len(e.Details) > 0 {
		return e.Message + ": " + strings.Join(e.Details, "; ")
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// Validation builds a CodeValidation error carrying every violation.
func Validation(msg string, violations []string) error {
	details := make([]string, len(violations))
	copy(details, violations)
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// HasCode reports whether any error in err's chain is a domain error with code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is reports whether err is a domain error and returns it.
func Is(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
