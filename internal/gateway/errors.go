// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package gateway

import (
	"context"
	"errors"
	"fmt"
)

// Code is the closed set of failure kinds a gateway call can report.
//
// Callers above the gateway branch on Code only. Provider messages are kept
// in [Error.Message] for logging and never matched.
type Code string

const (
	CodeUserAlreadyRegistered Code = "user_already_registered"
	CodeInvalidEmail          Code = "invalid_email"
	CodeEmailNotConfirmed     Code = "email_not_confirmed"
	CodeInvalidCredentials    Code = "invalid_credentials"
	CodeUniqueViolation       Code = "unique_violation"
	CodeNotFound              Code = "not_found"
	CodeInvalidToken          Code = "invalid_token"
	CodeUnavailable           Code = "unavailable"
	CodeUnknown               Code = "unknown"
)

// Error is the only error type returned by gateway implementations.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// NewError builds an [Error].
func NewError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("gateway %s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("gateway %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

/*
CodeOf classifies err.

Returns:
  - "" for a nil error
  - CodeUnavailable for an expired or cancelled context, whatever wraps it
  - the carried code for an [*Error]
  - CodeUnknown otherwise
*/
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CodeUnavailable
	}
	var gatewayError *Error
	if errors.As(err, &gatewayError) {
		return gatewayError.Code
	}
	return CodeUnknown
}

// IsCode reports whether err classifies as code.
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
