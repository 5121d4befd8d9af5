// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package guard gates routes by session presence and role.

[Evaluate] is the pure decision; [Guard.Require] applies it to a request
using the device's session mirror.
*/
package guard

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/devicestate"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/notify"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/respond"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/auth"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/profile"
)

// AnyRole admits every signed-in user.
const AnyRole sec.UserRole = ""

// # Decision

// Outcome is the state a guarded request resolves to.
type Outcome int

const (
	// Loading: the session is still being resolved. Nothing is decided yet.
	Loading Outcome = iota
	// UnauthorizedNoUser: nobody is signed in.
	UnauthorizedNoUser
	// UnauthorizedWrongRole: the user does not hold the required role.
	UnauthorizedWrongRole
	// Authorized: the guarded content may be served.
	Authorized
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case UnauthorizedNoUser:
		return "unauthorized_no_user"
	case UnauthorizedWrongRole:
		return "unauthorized_wrong_role"
	case Authorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// State is what the guard observes about the device.
type State struct {
	Loading bool
	User    *profile.User
}

// Decision is the result of [Evaluate]. Redirect is set for the unauthorized outcomes.
type Decision struct {
	Outcome  Outcome
	Redirect string
}

// Evaluate decides access for state. An empty required role admits any user.
func Evaluate(state State, required sec.UserRole) Decision {
	switch {
	case state.Loading:
		return Decision{Outcome: Loading}
	case state.User == nil:
		return Decision{Outcome: UnauthorizedNoUser, Redirect: constants.PathLogin}
	case required != AnyRole && state.User.Role != required:
		return Decision{Outcome: UnauthorizedWrongRole, Redirect: state.User.Role.LandingPath()}
	default:
		return Decision{Outcome: Authorized}
	}
}

// # Middleware

// Guard applies [Evaluate] to HTTP requests.
type Guard struct {
	state    devicestate.KV
	notifier notify.Notifier
}

// New constructs a [Guard]. A nil notifier routes to the request collector.
func New(state devicestate.KV, notifier notify.Notifier) *Guard {
	if notifier == nil {
		notifier = notify.Request
	}
	return &Guard{state: state, notifier: notifier}
}

/*
Require admits requests whose device is signed in with role.

  - Loading: 202 with Retry-After, no redirect.
  - No user: the requested path is remembered for the post-login return, then
    303 to the login page.
  - Wrong role: 303 to the landing page of the user's actual role.

Must run after [auth.RestoreSession].
*/
func (guard *Guard) Require(role sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := request.Context()

			var state State
			if mirror := auth.MirrorFrom(ctx); mirror != nil {
				snapshot := mirror.Snapshot()
				state = State{Loading: snapshot.Loading, User: snapshot.User}
			}

			decision := Evaluate(state, role)

			switch decision.Outcome {
			case Authorized:
				next.ServeHTTP(writer, request)

			case Loading:
				respond.Accepted(writer, request, 1, map[string]string{"state": decision.Outcome.String()})

			case UnauthorizedNoUser:
				path := request.URL.RequestURI()
				if deviceID := ctxutil.GetDeviceID(ctx); deviceID != "" {
					if err := devicestate.SaveJSON(ctx, guard.state, deviceID, constants.DeviceKeyReturnPath, path); err != nil {
						ctxutil.GetLogger(ctx).WarnContext(ctx, "return_path_save_failed", slog.Any("error", err))
					}
				}
				guard.notifier.Notify(ctx, notify.Error("Accès restreint",
					"Veuillez vous connecter pour accéder à cette page."))
				respond.Redirect(writer, request,
					decision.Redirect+"?"+constants.QueryNext+"="+url.QueryEscape(path))

			case UnauthorizedWrongRole:
				ctxutil.GetLogger(ctx).InfoContext(ctx, "route_role_mismatch",
					slog.String("required", string(role)),
					slog.String("path", request.URL.Path),
				)
				guard.notifier.Notify(ctx, notify.Error("Accès non autorisé", reservedFor(role)))
				respond.Redirect(writer, request, decision.Redirect)
			}
		})
	}
}

func reservedFor(role sec.UserRole) string {
	if role == sec.RoleSeller {
		return "Cette page est réservée aux vendeurs."
	}
	return "Cette page est réservée aux acheteurs."
}
