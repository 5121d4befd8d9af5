// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// Every response, success or error, uses one JSON envelope. The envelope also
// carries the notifications collected while the request ran, so the client can
// show them as toasts whatever the outcome.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/notify"
	"github.com/abbassi001/souk-bazaar-hub/pkg/pagination"
)

// SuccessEnvelope is the JSON envelope for successful single-resource responses.
type SuccessEnvelope struct {
	Data          interface{}           `json:"data"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

// PaginatedEnvelope is the JSON envelope for paginated list responses.
type PaginatedEnvelope struct {
	Data          interface{}           `json:"data"`
	Meta          pagination.Meta       `json:"meta"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	Error         string                `json:"error"`
	Code          string                `json:"code"`
	Details       []apperr.FieldError   `json:"details,omitempty"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

// RedirectPayload is the data of a navigation response.
type RedirectPayload struct {
	Redirect string `json:"redirect"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data wrapped in the standard success envelope.
func OK(writer http.ResponseWriter, request *http.Request, data interface{}) {
	JSON(writer, http.StatusOK, SuccessEnvelope{Data: data, Notifications: collected(request)})
}

// Created writes a 201 Created response with data wrapped in the standard success envelope.
func Created(writer http.ResponseWriter, request *http.Request, data interface{}) {
	JSON(writer, http.StatusCreated, SuccessEnvelope{Data: data, Notifications: collected(request)})
}

// Paginated writes a 200 OK response with paginated data and a metadata block.
func Paginated(writer http.ResponseWriter, request *http.Request, data interface{}, metadata pagination.Meta) {
	JSON(writer, http.StatusOK, PaginatedEnvelope{Data: data, Meta: metadata, Notifications: collected(request)})
}

// NoContent writes a 204 No Content response.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// Redirect writes a 303 See Other to location. The body repeats the target for
// API clients that do not follow redirects.
func Redirect(writer http.ResponseWriter, request *http.Request, location string) {
	writer.Header().Set(constants.HeaderLocation, location)
	JSON(writer, http.StatusSeeOther, SuccessEnvelope{
		Data:          RedirectPayload{Redirect: location},
		Notifications: collected(request),
	})
}

// Accepted writes a 202 with a Retry-After hint. Used while a session is still loading.
func Accepted(writer http.ResponseWriter, request *http.Request, retryAfterSeconds int, data interface{}) {
	writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(retryAfterSeconds))
	JSON(writer, http.StatusAccepted, SuccessEnvelope{Data: data, Notifications: collected(request)})
}

// Error converts any Go error into a standardized JSON API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	logger := ctxutil.GetLogger(request.Context())

	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		// Unexpected internal error: log full details but hide them from the client.
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Error:         appError.Message,
		Code:          appError.Code,
		Details:       appError.Details,
		Notifications: collected(request),
	})
}

func collected(request *http.Request) []notify.Notification {
	if collector := notify.FromContext(request.Context()); collector != nil {
		return collector.All()
	}
	return nil
}
