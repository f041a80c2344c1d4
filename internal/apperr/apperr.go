// Package apperr defines the error taxonomy shared by every operation in
// the crowd-safety core. Handlers translate these into the standard
// {code, message, details} payload; anything that is not an *Error is
// surfaced as an opaque internal error.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeNotFound         Code = "NOT_FOUND"
	CodeAlreadyProcessed Code = "ALREADY_PROCESSED"
	CodeForbidden        Code = "FORBIDDEN"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// Error is a typed failure with a stable code and optional field-level
// details. Message is always safe to show to callers.
type Error struct {
	Code    Code                   `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`

	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetail attaches one detail entry and returns the error for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

func Validationf(format string, args ...interface{}) *Error {
	return New(CodeValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...interface{}) *Error {
	return New(CodeNotFound, fmt.Sprintf(format, args...))
}

func AlreadyProcessedf(format string, args ...interface{}) *Error {
	return New(CodeAlreadyProcessed, fmt.Sprintf(format, args...))
}

// Forbidden carries a fixed message on purpose: the payload must not leak
// whether the principal or the resource caused the denial.
func Forbidden() *Error {
	return New(CodeForbidden, "not authorized")
}

// RateLimited carries the retry-after hint in seconds.
func RateLimited(retryAfterSeconds int) *Error {
	return New(CodeRateLimited, "too many requests").WithDetail("retry_after_seconds", retryAfterSeconds)
}

// Internal wraps an unexpected collaborator failure. The cause is for
// server-side logs only; callers see an opaque message.
func Internal(cause error) *Error {
	e := New(CodeInternal, "internal error")
	if cause != nil {
		e.cause = cause
	}
	return e
}

func (e *Error) Unwrap() error { return e.cause }

// As extracts an *Error from an error chain, or nil.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HTTPStatus maps the taxonomy onto HTTP response codes.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyProcessed:
		return http.StatusConflict
	case CodeForbidden:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
