// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/validate"
)

var errDeviceMissing = errors.New("requestutil: device middleware not mounted")

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Claims extracts the authenticated user claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - *sec.AuthClaims: The authenticated user claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

/*
DeviceID returns the device id set by the device middleware.

Returns:
  - string: device id
  - error: apperr.Internal when the middleware is not mounted
*/
func DeviceID(request *http.Request) (string, error) {
	deviceID := ctxutil.GetDeviceID(request.Context())
	if deviceID == "" {
		return "", apperr.Internal(errDeviceMissing)
	}
	return deviceID, nil
}

/*
BearerToken returns the access token of the request.

The Authorization header wins over the access cookie. Returns "" when neither
is present.
*/
func BearerToken(request *http.Request) string {
	if header := request.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := request.Cookie(constants.AccessTokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
