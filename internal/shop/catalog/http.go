// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	requestutil "github.com/abbassi001/souk-bazaar-hub/internal/platform/request"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/respond"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/validate"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/auth"
	"github.com/abbassi001/souk-bazaar-hub/pkg/convert"
	"github.com/abbassi001/souk-bazaar-hub/pkg/pagination"
	"github.com/abbassi001/souk-bazaar-hub/pkg/pointer"
	"github.com/abbassi001/souk-bazaar-hub/pkg/query"
)

// multipartOverhead is the room left for form fields around the image part.
const multipartOverhead = 1 << 20

// # Handler Implementation

// Handler implements the HTTP layer of the catalog and the seller dashboard.
type Handler struct {
	service *Service
}

// NewHandler constructs a new catalog [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the public product endpoints.
//
//   - GET /              : Paginated listing with filters.
//   - GET /{id}          : One product.
//   - GET /{id}/related  : Products of the same category.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listProducts)
	router.Get("/{id}", handler.getProduct)
	router.Get("/{id}/related", handler.relatedProducts)

	return router
}

// CategoryRoutes returns the category endpoints.
func (handler *Handler) CategoryRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listCategories)
	router.Get("/{key}", handler.getCategory)

	return router
}

// DashboardRoutes returns the seller dashboard. The caller mounts it behind
// the seller route guard.
func (handler *Handler) DashboardRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/products", handler.listSellerProducts)
	router.Post("/products", handler.createProduct)
	router.Patch("/products/{id}", handler.updateProduct)
	router.Delete("/products/{id}", handler.deleteProduct)
	router.Get("/stats", handler.sellerStats)
	router.Post("/images", handler.uploadImage)

	return router
}

// # Request Payloads

type productRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	OldPrice    *decimal.Decimal `json:"old_price"`
	Category    string           `json:"category"`
	Image       string           `json:"image"`
	IsNew       bool             `json:"is_new"`
	IsFeatured  bool             `json:"is_featured"`
}

func (input productRequest) toInput() ProductInput {
	return ProductInput{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		OldPrice:    input.OldPrice,
		Category:    input.Category,
		Image:       input.Image,
		IsNew:       input.IsNew,
		IsFeatured:  input.IsFeatured,
	}
}

// # Discovery Endpoints

/*
GET /api/v1/products.

Request:
  - category: string, or a comma-separated list
  - featured: bool
  - new: bool
  - q: string (name contains)
  - sort: newest | price_asc | price_desc | rating
  - page, limit: int

Response:
  - 200: []Product: Paginated list
*/
func (handler *Handler) listProducts(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Query: queryParams.Get("q"),
		Sort:  Sort(queryParams.Get("sort")),
	}
	switch categories := query.StringSlice(queryParams.Get("category")); len(categories) {
	case 0:
	case 1:
		filter.Category = categories[0]
	default:
		filter.Categories = categories
	}
	if raw := queryParams.Get("featured"); raw != "" {
		filter.Featured = pointer.To(convert.ToBool(raw))
	}
	if raw := queryParams.Get("new"); raw != "" {
		filter.New = pointer.To(convert.ToBool(raw))
	}

	products, total, err := handler.service.ListProducts(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, request, products, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/products/{id}.

Response:
  - 200: Product
  - 404: NOT_FOUND
*/
func (handler *Handler) getProduct(writer http.ResponseWriter, request *http.Request) {
	product, err := handler.service.GetProduct(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, product)
}

// GET /api/v1/products/{id}/related.
func (handler *Handler) relatedProducts(writer http.ResponseWriter, request *http.Request) {
	products, err := handler.service.RelatedProducts(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, products)
}

// GET /api/v1/categories.
func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, request, Categories())
}

/*
GET /api/v1/categories/{key}.

Response:
  - 200: {category, products}: First page of the category
  - 404: Unknown category
*/
func (handler *Handler) getCategory(writer http.ResponseWriter, request *http.Request) {
	key := requestutil.Param(request, "key")
	name, ok := CategoryName(key)
	if !ok {
		respond.Error(writer, request, apperr.NotFound("Category"))
		return
	}

	paginationParams := pagination.FromRequest(request)
	products, total, err := handler.service.ListProducts(request.Context(), Filter{Category: key}, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, request, map[string]any{
		"category": Category{Key: key, Name: name},
		"products": products,
	}, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

// # Dashboard Endpoints

// GET /api/v1/dashboard/products.
func (handler *Handler) listSellerProducts(writer http.ResponseWriter, request *http.Request) {
	sellerID, err := currentSeller(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	products, total, err := handler.service.ListSellerProducts(request.Context(), sellerID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, request, products, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
POST /api/v1/dashboard/products.

Response:
  - 201: Product
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) createProduct(writer http.ResponseWriter, request *http.Request) {
	sellerID, err := currentSeller(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input productRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	product, err := handler.service.CreateProduct(request.Context(), sellerID, input.toInput())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, request, product)
}

/*
PATCH /api/v1/dashboard/products/{id}.

Response:
  - 200: Product
  - 403: Product of another seller
  - 404: NOT_FOUND
*/
func (handler *Handler) updateProduct(writer http.ResponseWriter, request *http.Request) {
	sellerID, err := currentSeller(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input productRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	product, err := handler.service.UpdateProduct(request.Context(), sellerID, requestutil.Param(request, "id"), input.toInput())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, product)
}

// DELETE /api/v1/dashboard/products/{id}.
func (handler *Handler) deleteProduct(writer http.ResponseWriter, request *http.Request) {
	sellerID, err := currentSeller(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteProduct(request.Context(), sellerID, requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, map[string]string{"id": requestutil.Param(request, "id")})
}

// GET /api/v1/dashboard/stats.
func (handler *Handler) sellerStats(writer http.ResponseWriter, request *http.Request) {
	sellerID, err := currentSeller(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	stats, err := handler.service.SellerStats(request.Context(), sellerID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, request, stats)
}

/*
POST /api/v1/dashboard/images.

Request:
  - multipart/form-data with the file in the "image" part

Response:
  - 201: {url}: Public URL of the stored image
  - 400: Too large or not an image
*/
func (handler *Handler) uploadImage(writer http.ResponseWriter, request *http.Request) {
	sellerID, err := currentSeller(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxUploadBytes+multipartOverhead)
	if err := request.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldImage, "L'image ne doit pas dépasser 5 Mo."))
		return
	}

	file, header, err := request.FormFile(FieldImage)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldImage, "Veuillez sélectionner une image."))
		return
	}
	defer file.Close()

	url, err := handler.service.UploadImage(request.Context(), sellerID, header.Filename,
		header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, request, map[string]string{"url": url})
}

func currentSeller(request *http.Request) (string, error) {
	user := auth.CurrentUser(request.Context())
	if user == nil {
		return "", apperr.Unauthorized("Authentication required")
	}
	return user.ID, nil
}
