// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package checkout

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	requestutil "github.com/abbassi001/souk-bazaar-hub/internal/platform/request"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/respond"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/validate"
	"github.com/abbassi001/souk-bazaar-hub/internal/shop/cart"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/auth"
	"github.com/abbassi001/souk-bazaar-hub/pkg/pagination"
)

// Handler implements checkout and the buyer's order history. Both are
// mounted behind the signed-in route guard.
type Handler struct {
	service *Service
	carts   cart.StoreSource
}

// NewHandler constructs a new checkout [Handler].
func NewHandler(service *Service, carts cart.StoreSource) *Handler {
	return &Handler{service: service, carts: carts}
}

// Routes returns the checkout endpoints.
//
//   - GET  / : Summary of the device's cart.
//   - POST / : Place the order.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.summary)
	router.Post("/", handler.placeOrder)

	return router
}

// OrderRoutes returns the order history of the account page.
func (handler *Handler) OrderRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listOrders)

	return router
}

// GET /api/v1/checkout.
func (handler *Handler) summary(writer http.ResponseWriter, request *http.Request) {
	store, err := handler.cart(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, Summarize(store))
}

/*
POST /api/v1/checkout.

Request:
  - Details: delivery form; country defaults to Maroc, payment to cash

Response:
  - 201: Receipt, Location: /account
  - 400: VALIDATION_ERROR (empty cart or incomplete form)
*/
func (handler *Handler) placeOrder(writer http.ResponseWriter, request *http.Request) {
	user := auth.CurrentUser(request.Context())
	if user == nil {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	store, err := handler.cart(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var details Details
	if err := requestutil.DecodeJSON(request, &details); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	receipt, err := handler.service.PlaceOrder(request.Context(), user.ID, store, details)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set(constants.HeaderLocation, receipt.Redirect)
	respond.Created(writer, request, receipt)
}

// GET /api/v1/account/orders.
func (handler *Handler) listOrders(writer http.ResponseWriter, request *http.Request) {
	user := auth.CurrentUser(request.Context())
	if user == nil {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	paginationParams := pagination.FromRequest(request)
	orders, total, err := handler.service.ListOrders(request.Context(), user.ID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, request, orders, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) cart(request *http.Request) (*cart.Store, error) {
	deviceID, err := requestutil.DeviceID(request)
	if err != nil {
		return nil, err
	}
	store, err := handler.carts.Get(request.Context(), deviceID)
	if err != nil {
		return nil, apperr.ServiceUnavailable("Cart is temporarily unavailable").WithCause(err)
	}
	return store, nil
}
