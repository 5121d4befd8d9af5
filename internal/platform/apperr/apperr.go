// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package apperr defines the centralized error type of the storefront API.

Every error that crosses from a service into an HTTP handler is an [AppError]:
a machine-readable code, a client-safe message, the HTTP status to answer with
and an optional cause that is only ever logged.

Architecture:

  - Generic constructors (NotFound, Unauthorized, ...) cover transport-level failures.
  - Domain packages build their own taxonomy on top of [New] (see users/auth).
  - [Code] and [Is] let callers branch on the machine-readable code without
    type-asserting.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Generic Codes

const (
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeConflict           = "CONFLICT"
	CodeValidation         = "VALIDATION_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// AppError is the canonical error type for the storefront API.
//
// # Security
//
// Cause is for server-side logging only. It is never serialized so backend
// messages (SQL, provider responses) do not reach the client.
type AppError struct {
	// Code is a machine-readable identifier (e.g. "EMAIL_NOT_CONFIRMED").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// New builds an [AppError] with an arbitrary code. Domain packages use it to
// declare their own error taxonomy.
func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// WithCause returns a copy of e carrying cause for logging.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
//	apperr.NotFound("Product") // "Product not found"
func NotFound(resource string) *AppError {
	return New(CodeNotFound, resource+" not found", http.StatusNotFound)
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return New(CodeUnauthorized, msg, http.StatusUnauthorized)
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return New(CodeForbidden, msg, http.StatusForbidden)
}

// Conflict creates a 409 [AppError].
func Conflict(msg string) *AppError {
	return New(CodeConflict, msg, http.StatusConflict)
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	err := New(CodeValidation, msg, http.StatusBadRequest)
	err.Details = details
	return err
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return New(CodeRateLimited,
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		http.StatusTooManyRequests)
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
func Internal(cause error) *AppError {
	err := New(CodeInternal, "An unexpected error occurred", http.StatusInternalServerError)
	err.Cause = cause
	return err
}

// ServiceUnavailable creates a 503 [AppError].
func ServiceUnavailable(msg string) *AppError {
	return New(CodeServiceUnavailable, msg, http.StatusServiceUnavailable)
}

// # Helpers

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// Code returns the machine-readable code of err, or "" when err is not an [AppError].
func Code(err error) string {
	if ae := As(err); ae != nil {
		return ae.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && Code(err) == code
}
