// Package errors provides PinPoint's structured application errors.
//
// An AppError carries a machine-readable code plus interpolation params;
// the error-handler middleware maps it onto the HTTP response and the
// frontend owns translation.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Params carries structured context for frontend interpolation.
type Params map[string]any

// AppError is a structured application error with HTTP status and code.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Params     Params `json:"params,omitempty"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap supports errors.Is/As against the wrapped cause.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// Wrap attaches a cause to a new AppError.
func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// WithParams attaches interpolation params.
func (e *AppError) WithParams(params Params) *AppError {
	if e == nil || len(params) == 0 {
		return e
	}
	e.Params = params
	return e
}

// Constructors for the common HTTP statuses.

func NotFound(code, message string) *AppError     { return New(code, message, http.StatusNotFound) }
func BadRequest(code, message string) *AppError   { return New(code, message, http.StatusBadRequest) }
func Unauthorized(code, message string) *AppError { return New(code, message, http.StatusUnauthorized) }
func Forbidden(code, message string) *AppError    { return New(code, message, http.StatusForbidden) }
func Conflict(code, message string) *AppError     { return New(code, message, http.StatusConflict) }
func Internal(code, message string) *AppError {
	return New(code, message, http.StatusInternalServerError)
}

// IsAppError reports whether err wraps an AppError and returns it.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
