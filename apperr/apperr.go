// Package apperr defines the error taxonomy shared by the service and HTTP
// layers. Every recoverable failure carries an HTTP status plus a stable
// business code; anything else surfaces as a generic internal error without
// leaking its text to the caller.
package apperr

import "errors"

// Error is a caller-visible failure.
type Error struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// New builds an Error with an explicit status.
func New(status, code int, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Validation is a 400 caused by length or required-field violations.
func Validation(code int, message string) *Error { return New(400, code, message) }

// Unauthenticated is a 401 for missing, invalid or expired tokens.
func Unauthenticated(code int, message string) *Error { return New(401, code, message) }

// Forbidden is a 403 for non-owner mutation attempts.
func Forbidden(code int, message string) *Error { return New(403, code, message) }

// NotFound is a 404 for missing threads or replies.
func NotFound(code int, message string) *Error { return New(404, code, message) }

// Conflict is a 409, e.g. replying to a closed thread.
func Conflict(code int, message string) *Error { return New(409, code, message) }

// Internal is a 500 with a message safe to show.
func Internal(code int, message string) *Error { return New(500, code, message) }

// From extracts the typed error from err, or maps any other failure to a
// generic internal error so that no internal text escapes.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(50000, "internal server error")
}
