// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/devicestate"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/middleware"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/auth"
)

type server struct {
	*fixture
	router  http.Handler
	mirrors *devicestate.Registry[*auth.Mirror]
}

func newServer() *server {
	f := newFixture()
	mirrors := devicestate.NewRegistry(func(_ context.Context, id string) (*auth.Mirror, error) {
		return auth.NewMirror(id), nil
	}, time.Minute)

	router := chi.NewRouter()
	router.Use(withDevice)
	router.Use(middleware.Notices)
	router.Use(auth.RestoreSession(f.controller, mirrors))
	router.Mount("/api/v1/auth", auth.NewHandler(f.controller, false).Routes())

	return &server{fixture: f, router: router, mirrors: mirrors}
}

func withDevice(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		next.ServeHTTP(writer, request.WithContext(ctxutil.WithDeviceID(request.Context(), deviceID)))
	})
}

func (s *server) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, request)
	return recorder
}

func cookieNamed(recorder *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestHandler_SignInSetsCookies(t *testing.T) {
	s := newServer()

	recorder := s.do(http.MethodPost, "/api/v1/auth/signin", `{"email":"karim@example.ma","password":"secret1"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data struct {
			AccessToken string `json:"access_token"`
			Redirect    string `json:"redirect"`
		} `json:"data"`
		Notifications []struct {
			Title string `json:"title"`
		} `json:"notifications"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	assert.Equal(t, "access-1", body.Data.AccessToken)
	assert.Equal(t, constants.PathSellerDashboard, body.Data.Redirect)
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, "Connexion réussie!", body.Notifications[0].Title)

	access := cookieNamed(recorder, constants.AccessTokenCookieName)
	require.NotNil(t, access)
	assert.Equal(t, "/", access.Path)
	assert.True(t, access.HttpOnly)

	refresh := cookieNamed(recorder, constants.RefreshTokenCookieName)
	require.NotNil(t, refresh)
	assert.Equal(t, constants.RefreshTokenCookiePath, refresh.Path)
}

func TestHandler_SignUpCreated(t *testing.T) {
	s := newServer()

	recorder := s.do(http.MethodPost, "/api/v1/auth/signup",
		`{"email":"karim@example.ma","password":"secret1","name":"Karim","role":"buyer"}`)
	assert.Equal(t, http.StatusCreated, recorder.Code)

	recorder = s.do(http.MethodPost, "/api/v1/auth/signup",
		`{"email":"karim@example.ma","password":"12345","name":"Karim"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandler_SignOutRedirectsAndClearsCookies(t *testing.T) {
	s := newServer()
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/v1/auth/signin",
		`{"email":"karim@example.ma","password":"secret1"}`).Code)

	token := &http.Cookie{Name: constants.AccessTokenCookieName, Value: "access-1"}
	recorder := s.do(http.MethodPost, "/api/v1/auth/signout", "", token)

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, constants.PathLogin, recorder.Header().Get(constants.HeaderLocation))
	access := cookieNamed(recorder, constants.AccessTokenCookieName)
	require.NotNil(t, access)
	assert.Negative(t, access.MaxAge)
	mirror, err := s.mirrors.Get(context.Background(), deviceID)
	require.NoError(t, err)
	assert.Nil(t, mirror.User())
}

func TestRestoreSession(t *testing.T) {
	s := newServer()
	token := &http.Cookie{Name: constants.AccessTokenCookieName, Value: "cookie-token"}

	recorder := s.do(http.MethodGet, "/api/v1/auth/me", "", token)
	require.Equal(t, http.StatusOK, recorder.Code)
	mirror, err := s.mirrors.Get(context.Background(), deviceID)
	require.NoError(t, err)
	require.NotNil(t, mirror.User())
	assert.Equal(t, "Karim", mirror.User().Name)

	// Same token: the mirror is current and the gateway is not consulted again.
	s.do(http.MethodGet, "/api/v1/auth/me", "", token)
	assert.Equal(t, 1, s.gateway.verifies)

	// No token: the mirrored session is dropped.
	s.do(http.MethodGet, "/api/v1/auth/me", "")
	assert.Nil(t, mirror.User())
}

func TestHandler_RefreshWithoutCookie(t *testing.T) {
	s := newServer()

	recorder := s.do(http.MethodPost, "/api/v1/auth/refresh", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

type unavailableMirrors struct{}

func (unavailableMirrors) Get(context.Context, string) (*auth.Mirror, error) {
	return nil, errors.New("redis timeout")
}

func TestRestoreSession_UnavailableMirror(t *testing.T) {
	f := newFixture()
	reached := false

	router := chi.NewRouter()
	router.Use(withDevice)
	router.Use(auth.RestoreSession(f.controller, unavailableMirrors{}))
	router.Get("/", func(http.ResponseWriter, *http.Request) { reached = true })

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, reached)
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, apperr.CodeServiceUnavailable, body.Code)
}
