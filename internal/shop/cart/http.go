// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	requestutil "github.com/abbassi001/souk-bazaar-hub/internal/platform/request"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/respond"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/validate"
	"github.com/abbassi001/souk-bazaar-hub/internal/shop/catalog"
)

// StoreSource hands out the live cart of a device.
type StoreSource interface {
	Get(ctx context.Context, deviceID string) (*Store, error)
}

// ProductFinder looks up the product being added.
type ProductFinder interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

// # Handler Implementation

// Handler implements the cart endpoints of the current device.
type Handler struct {
	stores   StoreSource
	products ProductFinder
}

// NewHandler constructs a new cart [Handler].
func NewHandler(stores StoreSource, products ProductFinder) *Handler {
	return &Handler{stores: stores, products: products}
}

// Routes returns the cart endpoints.
//
//   - GET    /                    : Cart contents and totals.
//   - POST   /items               : Add one unit of a product.
//   - PATCH  /items/{productID}   : Set a line quantity.
//   - DELETE /items/{productID}   : Remove a line.
//   - DELETE /                    : Empty the cart.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.getCart)
	router.Delete("/", handler.clearCart)
	router.Post("/items", handler.addItem)
	router.Patch("/items/{productID}", handler.updateQuantity)
	router.Delete("/items/{productID}", handler.removeItem)

	return router
}

// View is the cart as returned to the client.
type View struct {
	Items     []Item          `json:"items"`
	ItemCount int             `json:"item_count"`
	Lines     int             `json:"lines"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ViewOf renders store.
func ViewOf(store *Store) View {
	contents := store.Contents()
	return View{
		Items:     contents.Items,
		ItemCount: contents.ItemCount,
		Lines:     len(contents.Items),
		Subtotal:  contents.Subtotal,
	}
}

type addRequest struct {
	ProductID string `json:"product_id"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// GET /api/v1/cart.
func (handler *Handler) getCart(writer http.ResponseWriter, request *http.Request) {
	store, err := handler.store(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, ViewOf(store))
}

/*
POST /api/v1/cart/items.

Request:
  - product_id: string

Response:
  - 200: View
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

	product, err := handler.products.GetProduct(request.Context(), input.ProductID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	store.Add(request.Context(), catalog.SnapshotOf(product))
	respond.OK(writer, request, ViewOf(store))
}

/*
PATCH /api/v1/cart/items/{productID}.

Request:
  - quantity: int; values below 1 leave the cart unchanged

Response:
  - 200: View
*/
func (handler *Handler) updateQuantity(writer http.ResponseWriter, request *http.Request) {
	store, err := handler.store(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input quantityRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	store.UpdateQuantity(request.Context(), requestutil.Param(request, "productID"), input.Quantity)
	respond.OK(writer, request, ViewOf(store))
}

// DELETE /api/v1/cart/items/{productID}.
func (handler *Handler) removeItem(writer http.ResponseWriter, request *http.Request) {
	store, err := handler.store(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	store.Remove(request.Context(), requestutil.Param(request, "productID"))
	respond.OK(writer, request, ViewOf(store))
}

// DELETE /api/v1/cart.
func (handler *Handler) clearCart(writer http.ResponseWriter, request *http.Request) {
	store, err := handler.store(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	store.Clear(request.Context())
	respond.OK(writer, request, ViewOf(store))
}

func (handler *Handler) store(request *http.Request) (*Store, error) {
	deviceID, err := requestutil.DeviceID(request)
	if err != nil {
		return nil, err
	}
	store, err := handler.stores.Get(request.Context(), deviceID)
	if err != nil {
		return nil, apperr.ServiceUnavailable("Cart is temporarily unavailable").WithCause(err)
	}
	return store, nil
}
