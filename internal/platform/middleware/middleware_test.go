// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/middleware"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/notify"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
)

type stubVerifier struct{}

func (stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token == "good" {
		return &sec.AuthClaims{UserID: "u1", Role: "seller"}, nil
	}
	return nil, errors.New("bad token")
}

func captureClaims(target **sec.AuthClaims) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*target = ctxutil.GetAuthUser(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "client-id")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "client-id", seen)
}

func TestDevice_IssuesCookieOnce(t *testing.T) {
	var seen string
	handler := middleware.Device(true)(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetDeviceID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, constants.DeviceCookieName, cookies[0].Name)
	assert.Equal(t, seen, cookies[0].Value)
	assert.True(t, cookies[0].Secure)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: constants.DeviceCookieName, Value: cookies[0].Value})
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, request)

	assert.Empty(t, second.Result().Cookies())
	assert.Equal(t, cookies[0].Value, seen)
}

func TestDevice_ReplacesMalformedCookie(t *testing.T) {
	var seen string
	handler := middleware.Device(false)(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetDeviceID(request.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: constants.DeviceCookieName, Value: "../../etc"})
	handler.ServeHTTP(httptest.NewRecorder(), request)

	assert.NotEqual(t, "../../etc", seen)
	assert.NotEmpty(t, seen)
}

func TestNotices_AttachesCollector(t *testing.T) {
	var collector *notify.Collector
	handler := middleware.Notices(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		collector = notify.FromContext(request.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotNil(t, collector)
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantUser   bool
	}{
		{name: "anonymous", wantStatus: http.StatusOK},
		{name: "valid header", header: "Bearer good", wantStatus: http.StatusOK, wantUser: true},
		{name: "invalid header", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "malformed header", header: "Token good", wantStatus: http.StatusUnauthorized},
		{name: "valid cookie", cookie: "good", wantStatus: http.StatusOK, wantUser: true},
		{name: "expired cookie", cookie: "nope", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var claims *sec.AuthClaims
			handler := middleware.Authenticate(stubVerifier{})(captureClaims(&claims))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				request.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: tt.cookie})
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantUser, claims != nil)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNoContent)
	}))

	anonymous := httptest.NewRecorder()
	handler.ServeHTTP(anonymous, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "u1"}))
	signedIn := httptest.NewRecorder()
	handler.ServeHTTP(signedIn, request)
	assert.Equal(t, http.StatusNoContent, signedIn.Code)
}

func TestRateLimit_RejectsBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 1, 2)(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	statuses := make([]int, 0, 3)
	for range 3 {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = "10.0.0.1:1234"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		statuses = append(statuses, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}

func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

type corsConfig struct{ dev bool }

func (c corsConfig) IsDevelopment() bool      { return c.dev }
func (c corsConfig) AllowedOrigins() []string { return []string{"https://partner.example"} }

func TestCORS(t *testing.T) {
	handler := middleware.CORS(corsConfig{})(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	for origin, allowed := range map[string]bool{
		"https://partner.example":    true,
		"https://www.souk-bazaar.ma": true,
		"https://evil.example":       false,
	} {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderOrigin, origin)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, allowed, recorder.Header().Get("Access-Control-Allow-Origin") == origin, origin)
	}
}
