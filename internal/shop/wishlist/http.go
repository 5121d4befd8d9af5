// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package wishlist

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	requestutil "github.com/abbassi001/souk-bazaar-hub/internal/platform/request"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/respond"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/validate"
	"github.com/abbassi001/souk-bazaar-hub/internal/shop/catalog"
)

// StoreSource hands out the live wishlist of a device.
type StoreSource interface {
	Get(ctx context.Context, deviceID string) (*Store, error)
}

// ProductFinder looks up the product being saved.
type ProductFinder interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

// Handler implements the wishlist endpoints of the current device.
type Handler struct {
	stores   StoreSource
	products ProductFinder
}

// NewHandler constructs a new wishlist [Handler].
func NewHandler(stores StoreSource, products ProductFinder) *Handler {
	return &Handler{stores: stores, products: products}
}

// Routes returns the wishlist endpoints.
//
//   - GET    /                    : Saved products.
//   - GET    /items/{productID}   : Membership check.
//   - POST   /items               : Save a product.
//   - DELETE /items/{productID}   : Drop a product.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listItems)
	router.Post("/items", handler.addItem)
	router.Get("/items/{productID}", handler.containsItem)
	router.Delete("/items/{productID}", handler.removeItem)

	return router
}

type addRequest struct {
	ProductID string `json:"product_id"`
}

// GET /api/v1/wishlist.
func (handler *Handler) listItems(writer http.ResponseWriter, request *http.Request) {
	store, err := handler.store(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, store.Items())
}

/*
POST /api/v1/wishlist/items.

Request:
  - product_id: string

Response:
  - 200: []Item
  - 404: Unknown product
*/
func (handler *Handler) addItem(writer http.ResponseWriter, request *http.Request) {
	store, err := handler.store(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input addRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// Skip the lookup when the product is already saved.
	if !store.Contains(input.ProductID) {
		product, err := handler.products.GetProduct(request.Context(), input.ProductID)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		store.Add(request.Context(), catalog.SnapshotOf(product))
	}

	respond.OK(writer, request, store.Items())
}

// GET /api/v1/wishlist/items/{productID}.
func (handler *Handler) containsItem(writer http.ResponseWriter, request *http.Request) {
	store, err := handler.store(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, map[string]bool{"saved": store.Contains(requestutil.Param(request, "productID"))})
}

// DELETE /api/v1/wishlist/items/{productID}.
func (handler *Handler) removeItem(writer http.ResponseWriter, request *http.Request) {
	store, err := handler.store(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	store.Remove(request.Context(), requestutil.Param(request, "productID"))
	respond.OK(writer, request, store.Items())
}

func (handler *Handler) store(request *http.Request) (*Store, error) {
	deviceID, err := requestutil.DeviceID(request)
	if err != nil {
		return nil, err
	}
	store, err := handler.stores.Get(request.Context(), deviceID)
	if err != nil {
		return nil, apperr.ServiceUnavailable("Wishlist is temporarily unavailable").WithCause(err)
	}
	return store, nil
}
