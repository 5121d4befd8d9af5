// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package middleware

import (
	"net/http"
	"strings"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	requestutil "github.com/abbassi001/souk-bazaar-hub/internal/platform/request"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/respond"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate verifies the access token and injects [*sec.AuthClaims] into
// the request context.
//
// # Flow
//  1. No token: the request proceeds as anonymous.
//  2. Invalid token in the Authorization header: 401.
//  3. Invalid token in the access cookie: proceeds as anonymous, so an expired
//     browser session falls through to the route guard instead of failing.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token := requestutil.BearerToken(request)
			fromHeader := strings.TrimSpace(request.Header.Get("Authorization")) != ""

			if token == "" {
				if fromHeader {
					respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
					return
				}
				next.ServeHTTP(writer, request)
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				if fromHeader {
					respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
					return
				}
				next.ServeHTTP(writer, request)
				return
			}

			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
