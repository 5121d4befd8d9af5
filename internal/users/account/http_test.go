// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package account_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/account"
)

type envelope struct {
	Data json.RawMessage `json:"data"`
	Code string          `json:"code"`
}

// newRouter mounts the account routes. A signed-in router carries the
// claims of the current session.
func newRouter(f *fixture, signedIn bool) http.Handler {
	router := chi.NewRouter()
	if signedIn {
		claims := &sec.AuthClaims{RegisteredClaims: jwt.RegisteredClaims{ID: current}, UserID: userID}
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				next.ServeHTTP(writer, request.WithContext(ctxutil.WithAuthUser(request.Context(), claims)))
			})
		})
	}
	router.Mount("/api/v1/account", account.NewHandler(f.service).Routes())
	return router
}

func serve(t *testing.T, handler http.Handler, method, target, body string) (int, envelope) {
	t.Helper()

	request := httptest.NewRequest(method, target, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	var decoded envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return recorder.Code, decoded
}

func TestSessionRoutes_RequireToken(t *testing.T) {
	handler := newRouter(newFixture(), false)

	status, body := serve(t, handler, http.MethodGet, "/api/v1/account/sessions", "")

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, apperr.CodeUnauthorized, body.Code)
}

func TestSessionRoutes(t *testing.T) {
	f := newFixture()
	handler := newRouter(f, true)

	status, body := serve(t, handler, http.MethodGet, "/api/v1/account/sessions", "")
	require.Equal(t, http.StatusOK, status)

	var sessions []account.SessionInfo
	require.NoError(t, json.Unmarshal(body.Data, &sessions))
	require.Len(t, sessions, 3)
	assert.True(t, sessions[0].IsCurrent)

	status, body = serve(t, handler, http.MethodDelete, "/api/v1/account/sessions/"+current, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperr.CodeValidation, body.Code)

	status, body = serve(t, handler, http.MethodDelete, "/api/v1/account/sessions/not-a-session", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperr.CodeNotFound, body.Code)

	status, body = serve(t, handler, http.MethodDelete, "/api/v1/account/sessions", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"revoked": 2}`, string(body.Data))
}

func TestUpdateProfile_RequiresMirror(t *testing.T) {
	handler := newRouter(newFixture(), true)

	status, body := serve(t, handler, http.MethodPatch, "/api/v1/account/profile", `{"name": "Salma"}`)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, apperr.CodeUnauthorized, body.Code)
}
