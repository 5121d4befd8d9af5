// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abbassi001/souk-bazaar-hub/internal/gateway"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	requestutil "github.com/abbassi001/souk-bazaar-hub/internal/platform/request"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/respond"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/validate"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/profile"
)

// refreshCookieMaxAge matches the lifetime of refresh tokens issued by the gateway.
const refreshCookieMaxAge = 30 * 24 * time.Hour

var errMirrorMissing = errors.New("auth: session middleware not mounted")

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
type Handler struct {
	controller   *Controller
	secureCookie bool
}

// NewHandler constructs a new [Handler]. secureCookie marks session cookies Secure.
func NewHandler(controller *Controller, secureCookie bool) *Handler {
	return &Handler{controller: controller, secureCookie: secureCookie}
}

// Routes returns a [chi.Router] configured with the authentication routes.
//
// # Endpoints
//   - POST /signup  : Registers an unconfirmed account.
//   - POST /signin  : Opens a session and sets the session cookies.
//   - POST /signout : Ends the session and clears the cookies.
//   - POST /refresh : Rotates the session from the refresh cookie.
//   - POST /confirm : Consumes an email confirmation token.
//   - GET  /me      : Returns the device's mirrored user.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/signup", handler.signUp)
	router.Post("/signin", handler.signIn)
	router.Post("/signout", handler.signOut)
	router.Post("/refresh", handler.refresh)
	router.Post("/confirm", handler.confirm)
	router.Get("/me", handler.me)

	return router
}

// # Request Payloads

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type confirmRequest struct {
	Token string `json:"token"`
}

// # Response Payloads

type sessionResponse struct {
	User        *profile.User `json:"user"`
	AccessToken string        `json:"access_token"`
	ExpiresAt   time.Time     `json:"expires_at"`
	Redirect    string        `json:"redirect,omitempty"`
}

type meResponse struct {
	User        *profile.User `json:"user"`
	Loading     bool          `json:"loading"`
	DisplayName string        `json:"display_name,omitempty"`
}

/*
SignUp registers a new account.

POST /api/v1/auth/signup

Response:
  - 201: The registered email; the account awaits confirmation
  - 400: VALIDATION_ERROR or INVALID_EMAIL
  - 409: DUPLICATE_ACCOUNT or SUBMISSION_IN_PROGRESS
*/
func (handler *Handler) signUp(writer http.ResponseWriter, request *http.Request) {
	mirror, err := mirrorOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input signUpRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	err = handler.controller.SignUp(request.Context(), mirror, SignUpInput{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
		Role:     input.Role,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, request, map[string]string{"email": input.Email})
}

/*
SignIn authenticates with email and password.

POST /api/v1/auth/signin

Description: On success the access cookie (site-wide) and the refresh cookie
(scoped to the auth routes) are set and the body names the page to land on.

Response:
  - 200: sessionResponse
  - 401: INVALID_CREDENTIALS
  - 403: EMAIL_NOT_CONFIRMED
*/
func (handler *Handler) signIn(writer http.ResponseWriter, request *http.Request) {
	mirror, err := mirrorOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input signInRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.controller.SignIn(request.Context(), mirror, input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, result.Session)

	respond.OK(writer, request, sessionResponse{
		User:        result.User,
		AccessToken: result.Session.AccessToken,
		ExpiresAt:   result.Session.ExpiresAt,
		Redirect:    result.Redirect,
	})
}

/*
SignOut ends the session.

POST /api/v1/auth/signout

Response:
  - 303: Redirect to the login page; cookies are cleared
*/
func (handler *Handler) signOut(writer http.ResponseWriter, request *http.Request) {
	mirror, err := mirrorOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	location, err := handler.controller.SignOut(request.Context(), mirror)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearSessionCookies(writer)
	respond.Redirect(writer, request, location)
}

/*
Refresh rotates the session using the refresh cookie.

POST /api/v1/auth/refresh

Response:
  - 200: sessionResponse
  - 401: Missing or rejected refresh token; cookies are cleared
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	mirror, err := mirrorOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	session, err := handler.controller.Refresh(request.Context(), mirror, cookie.Value)
	if err != nil {
		if apperr.Is(err, CodeInvalidToken) {
			handler.clearSessionCookies(writer)
		}
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookies(writer, session)

	respond.OK(writer, request, sessionResponse{
		User:        mirror.User(),
		AccessToken: session.AccessToken,
		ExpiresAt:   session.ExpiresAt,
	})
}

/*
Confirm consumes the token of a confirmation link.

POST /api/v1/auth/confirm

Response:
  - 303: Redirect to the login page
  - 401: INVALID_TOKEN
*/
func (handler *Handler) confirm(writer http.ResponseWriter, request *http.Request) {
	var input confirmRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.controller.ConfirmEmail(request.Context(), input.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Redirect(writer, request, constants.PathLogin)
}

/*
Me returns the mirrored user of the device.

GET /api/v1/auth/me

Response:
  - 200: meResponse; user is null when signed out
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	mirror, err := mirrorOf(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	snapshot := mirror.Snapshot()
	respond.OK(writer, request, meResponse{
		User:        snapshot.User,
		Loading:     snapshot.Loading,
		DisplayName: handler.controller.DisplayName(request.Context(), mirror.DeviceID()),
	})
}

// # Cookies

func (handler *Handler) setSessionCookies(writer http.ResponseWriter, session *gateway.Session) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    session.AccessToken,
		Path:     "/",
		Expires:  session.ExpiresAt,
		Secure:   handler.secureCookie,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if session.RefreshToken == "" {
		return
	}
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   int(refreshCookieMaxAge / time.Second),
		Secure:   handler.secureCookie,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (handler *Handler) clearSessionCookies(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   handler.secureCookie,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   handler.secureCookie,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func mirrorOf(request *http.Request) (*Mirror, error) {
	if mirror := MirrorFrom(request.Context()); mirror != nil {
		return mirror, nil
	}
	return nil, apperr.Internal(errMirrorMissing)
}
