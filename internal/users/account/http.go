// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/middleware"
	requestutil "github.com/abbassi001/souk-bazaar-hub/internal/platform/request"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/respond"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/validate"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/auth"
	"github.com/abbassi001/souk-bazaar-hub/pkg/uuid"
)

// Handler implements the HTTP layer of the account settings. It is mounted
// behind the signed-in route guard.
type Handler struct {
	service *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the settings endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/profile", handler.getProfile)
	router.Patch("/profile", handler.updateProfile)

	// Session routes act on the token's own session id.
	router.Group(func(sessions chi.Router) {
		sessions.Use(middleware.RequireAuth)
		sessions.Get("/sessions", handler.listSessions)
		sessions.Delete("/sessions", handler.revokeOtherSessions)
		sessions.Delete("/sessions/{id}", handler.revokeSession)
	})

	return router
}

// # Profile Endpoints

// GET /api/v1/account/profile.
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	user := auth.CurrentUser(request.Context())
	if user == nil {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	respond.OK(writer, request, user)
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

/*
PATCH /api/v1/account/profile.

Request:
  - body: {name}

Response:
  - 200: profile.User
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	mirror := auth.MirrorFrom(request.Context())
	user := auth.CurrentUser(request.Context())
	if mirror == nil || user == nil {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	var input updateProfileRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	updated, err := handler.service.UpdateName(request.Context(), user.ID, mirror, input.Name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, updated)
}

// # Session Endpoints

// GET /api/v1/account/sessions.
func (handler *Handler) listSessions(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessions, err := handler.service.ListSessions(request.Context(), claims.UserID, claims.SessionID())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, sessions)
}

/*
DELETE /api/v1/account/sessions/{id}.

Response:
  - 200: {revoked: true}
  - 400: VALIDATION_ERROR: id is the current session
  - 404: NOT_FOUND
*/
func (handler *Handler) revokeSession(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessionID := requestutil.Param(request, "id")
	if !uuid.Valid(sessionID) {
		respond.Error(writer, request, apperr.NotFound("Session"))
		return
	}

	if err := handler.service.RevokeSession(request.Context(), claims.UserID, sessionID, claims.SessionID()); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, map[string]bool{"revoked": true})
}

// DELETE /api/v1/account/sessions.
func (handler *Handler) revokeOtherSessions(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	closed, err := handler.service.RevokeOtherSessions(request.Context(), claims.UserID, claims.SessionID())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, map[string]int64{"revoked": closed})
}
