// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package guard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbassi001/souk-bazaar-hub/internal/gateway"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/devicestate"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/notify"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/auth"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/guard"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/profile"
)

const deviceID = "0192f1c4-7b7e-7a35-9d3c-6a1f0b2e4c11"

// # Evaluate

func TestEvaluate(t *testing.T) {
	buyer := &profile.User{ID: "u-1", Role: sec.RoleBuyer}
	seller := &profile.User{ID: "u-2", Role: sec.RoleSeller}

	tests := []struct {
		name     string
		state    guard.State
		required sec.UserRole
		expected guard.Decision
	}{
		{"loading wins over user", guard.State{Loading: true, User: seller}, sec.RoleSeller, guard.Decision{Outcome: guard.Loading}},
		{"no user", guard.State{}, sec.RoleSeller, guard.Decision{Outcome: guard.UnauthorizedNoUser, Redirect: constants.PathLogin}},
		{"no user any role", guard.State{}, guard.AnyRole, guard.Decision{Outcome: guard.UnauthorizedNoUser, Redirect: constants.PathLogin}},
		{"buyer on seller route", guard.State{User: buyer}, sec.RoleSeller, guard.Decision{Outcome: guard.UnauthorizedWrongRole, Redirect: constants.PathProducts}},
		{"seller on buyer route", guard.State{User: seller}, sec.RoleBuyer, guard.Decision{Outcome: guard.UnauthorizedWrongRole, Redirect: constants.PathSellerDashboard}},
		{"seller on seller route", guard.State{User: seller}, sec.RoleSeller, guard.Decision{Outcome: guard.Authorized}},
		{"buyer on any role", guard.State{User: buyer}, guard.AnyRole, guard.Decision{Outcome: guard.Authorized}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, guard.Evaluate(tt.state, tt.required))
		})
	}
}

// # Middleware

type stubGateway struct {
	gateway.AuthService
	entered chan struct{}
	release chan struct{}
}

func (s *stubGateway) VerifyAccessToken(_ context.Context, token string) (*gateway.Session, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
		<-s.release
	}
	return &gateway.Session{UserID: "u-1", AccessToken: token, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type stubResolver struct{ role sec.UserRole }

func (s stubResolver) Resolve(_ context.Context, id string) (*profile.User, error) {
	return &profile.User{ID: id, Role: s.role, Name: "Salma"}, nil
}

type harness struct {
	guard      *guard.Guard
	state      *devicestate.MemoryKV
	controller *auth.Controller
	gateway    *stubGateway
	mirror     *auth.Mirror
}

func newHarness(role sec.UserRole) *harness {
	state := devicestate.NewMemoryKV()
	stub := &stubGateway{}
	return &harness{
		guard:      guard.New(state, nil),
		state:      state,
		controller: auth.NewController(stub, stubResolver{role: role}, state, nil, auth.Config{GatewayTimeout: time.Second}),
		gateway:    stub,
		mirror:     auth.NewMirror(deviceID),
	}
}

func (h *harness) signIn(t *testing.T) {
	t.Helper()
	require.NoError(t, h.controller.Restore(context.Background(), h.mirror, "token"))
}

// serve runs a guarded request and reports whether the protected handler ran.
func (h *harness) serve(required sec.UserRole, target string) (*httptest.ResponseRecorder, []notify.Notification, bool) {
	reached := false
	handler := h.guard.Require(required)(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		reached = true
		writer.WriteHeader(http.StatusOK)
	}))

	ctx, collector := notify.WithCollector(context.Background())
	ctx = ctxutil.WithDeviceID(ctx, deviceID)
	ctx = auth.WithMirror(ctx, h.mirror)

	request := httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder, collector.All(), reached
}

func TestRequire_NoUserRemembersPath(t *testing.T) {
	h := newHarness(sec.RoleSeller)

	recorder, notices, reached := h.serve(sec.RoleSeller, "/dashboard/products?page=2")

	assert.False(t, reached)
	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/login?next=%2Fdashboard%2Fproducts%3Fpage%3D2", recorder.Header().Get(constants.HeaderLocation))
	require.Len(t, notices, 1)
	assert.Equal(t, "Accès restreint", notices[0].Title)

	var remembered string
	found, err := devicestate.LoadJSON(context.Background(), h.state, deviceID, constants.DeviceKeyReturnPath, &remembered)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/dashboard/products?page=2", remembered)
}

func TestRequire_BuyerOnSellerRoute(t *testing.T) {
	h := newHarness(sec.RoleBuyer)
	h.signIn(t)

	recorder, notices, reached := h.serve(sec.RoleSeller, "/dashboard")

	assert.False(t, reached)
	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, constants.PathProducts, recorder.Header().Get(constants.HeaderLocation))
	require.Len(t, notices, 1)
	assert.Equal(t, notify.Error("Accès non autorisé", "Cette page est réservée aux vendeurs."), notices[0])
}

func TestRequire_Authorized(t *testing.T) {
	h := newHarness(sec.RoleSeller)
	h.signIn(t)

	recorder, notices, reached := h.serve(sec.RoleSeller, "/dashboard")

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, notices)
}

func TestRequire_LoadingDoesNotRedirect(t *testing.T) {
	h := newHarness(sec.RoleSeller)
	h.gateway.entered = make(chan struct{})
	h.gateway.release = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- h.controller.Restore(context.Background(), h.mirror, "token") }()
	<-h.gateway.entered

	recorder, notices, reached := h.serve(sec.RoleSeller, "/dashboard")

	close(h.gateway.release)
	require.NoError(t, <-done)

	assert.False(t, reached)
	assert.Equal(t, http.StatusAccepted, recorder.Code)
	assert.Equal(t, "1", recorder.Header().Get(constants.HeaderRetryAfter))
	assert.Empty(t, recorder.Header().Get(constants.HeaderLocation))
	assert.Empty(t, notices)
}
