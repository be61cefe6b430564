// Package errs defines the error taxonomy shared by the store, auth and API
// layers. Every failure that reaches a client is an *Error with a Code that
// decides the HTTP status.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure.
type Code string

const (
	CodeValidation   Code = "VALIDATION"
	CodeConflict     Code = "CONFLICT"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeRateLimited  Code = "RATE_LIMITED"
	CodeInternal     Code = "INTERNAL"
)

// Duplicate unique fields are reported as 400, not 409.
var statusByCode = map[Code]int{
	CodeValidation:   http.StatusBadRequest,
	CodeConflict:     http.StatusBadRequest,
	CodeUnauthorized: http.StatusUnauthorized,
	CodeNotFound:     http.StatusNotFound,
	CodeRateLimited:  http.StatusTooManyRequests,
	CodeInternal:     http.StatusInternalServerError,
}

// HTTPStatus returns the response status for a code. Unknown codes map to 500.
func HTTPStatus(code Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a classified failure with a client-facing message.
type Error struct {
	code    Code
	message string
	cause   error
}

// New creates an error without an underlying cause.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

// Validation, NotFound, Unauthorized and Conflict are shorthands for New.
func Validation(message string) *Error   { return New(CodeValidation, message) }
func NotFound(message string) *Error     { return New(CodeNotFound, message) }
func Unauthorized(message string) *Error { return New(CodeUnauthorized, message) }
func Conflict(message string) *Error     { return New(CodeConflict, message) }

// Code returns the error's classification.
func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

// Message returns the client-facing message.
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the first *Error in err's chain, or nil.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// Public resolves err into the status and message sent to the client.
// Unclassified errors become 500 and echo their text.
func Public(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, "unknown error"
	}
	typed := As(err)
	if typed == nil {
		return http.StatusInternalServerError, err.Error()
	}
	if typed.code == CodeInternal {
		if typed.cause != nil {
			return http.StatusInternalServerError, typed.cause.Error()
		}
	}
	return HTTPStatus(typed.code), typed.message
}
