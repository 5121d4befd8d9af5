// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package catalog

import (
	"context"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/abbassi001/souk-bazaar-hub/internal/gateway"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/notify"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/validate"
	"github.com/abbassi001/souk-bazaar-hub/pkg/slug"
	"github.com/abbassi001/souk-bazaar-hub/pkg/uuid"
)

// RelatedLimit caps the related products shown on a product page.
const RelatedLimit = 4

// ImagePrefix is the object storage folder of product images.
const ImagePrefix = "product-images"

// # Service Layer

// Service orchestrates product discovery and the seller dashboard.
type Service struct {
	repo     ProductRepository
	images   gateway.ObjectStore
	notifier notify.Notifier
	now      func() time.Time
}

// NewService constructs a new [Service]. A nil notifier routes to the request collector.
func NewService(repo ProductRepository, images gateway.ObjectStore, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Request
	}
	return &Service{repo: repo, images: images, notifier: notifier, now: time.Now}
}

// ProductInput carries the seller-editable fields of a product.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	OldPrice    *decimal.Decimal
	Category    string
	Image       string
	IsNew       bool
	IsFeatured  bool
}

// # Discovery

// ListProducts returns a page of the public listing.
func (service *Service) ListProducts(ctx context.Context, filter Filter, limit, offset int) ([]*Product, int, error) {
	return service.repo.List(ctx, filter, limit, offset)
}

// GetProduct returns one product.
func (service *Service) GetProduct(ctx context.Context, id string) (*Product, error) {
	if !uuid.Valid(id) {
		return nil, apperr.NotFound("Product")
	}
	return service.repo.FindByID(ctx, id)
}

// RelatedProducts returns up to [RelatedLimit] products of the same category.
func (service *Service) RelatedProducts(ctx context.Context, id string) ([]*Product, error) {
	product, err := service.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	related, _, err := service.repo.List(ctx, Filter{Category: product.Category, ExcludeID: product.ID}, RelatedLimit, 0)
	return related, err
}

// # Dashboard

// ListSellerProducts returns the seller's products, newest first.
func (service *Service) ListSellerProducts(ctx context.Context, sellerID string, limit, offset int) ([]*Product, int, error) {
	return service.repo.List(ctx, Filter{SellerID: sellerID, Sort: SortNewest}, limit, offset)
}

// SellerStats summarises the seller's listing.
func (service *Service) SellerStats(ctx context.Context, sellerID string) (*Stats, error) {
	return service.repo.Stats(ctx, sellerID)
}

/*
CreateProduct validates input and lists a new product for sellerID.

Returns:
  - *Product: the persisted product
  - error: VALIDATION_ERROR with one detail per invalid field
*/
func (service *Service) CreateProduct(ctx context.Context, sellerID string, input ProductInput) (*Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := service.now().UTC()
	product := &Product{
		ID:        uuid.New(),
		SellerID:  sellerID,
		Rating:    decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	input.applyTo(product)

	if err := service.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "product_created",
		slog.String("product_id", product.ID),
		slog.String("seller_id", sellerID),
	)
	service.notifier.Notify(ctx, notify.Success("Produit ajouté", "Votre produit a été ajouté avec succès."))
	return product, nil
}

// UpdateProduct edits a product owned by sellerID.
func (service *Service) UpdateProduct(ctx context.Context, sellerID, id string, input ProductInput) (*Product, error) {
	product, err := service.owned(ctx, sellerID, id, "Vous n'êtes pas autorisé à modifier ce produit.")
	if err != nil {
		return nil, err
	}

	if err := validateInput(input); err != nil {
		return nil, err
	}

	input.applyTo(product)
	product.UpdatedAt = service.now().UTC()

	if err := service.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	service.notifier.Notify(ctx, notify.Success("Produit mis à jour", "Votre produit a été mis à jour avec succès."))
	return product, nil
}

// DeleteProduct removes a product owned by sellerID.
func (service *Service) DeleteProduct(ctx context.Context, sellerID, id string) error {
	if _, err := service.owned(ctx, sellerID, id, "Vous n'êtes pas autorisé à supprimer ce produit."); err != nil {
		return err
	}

	if err := service.repo.Delete(ctx, id); err != nil {
		service.notifier.Notify(ctx, notify.Error("Erreur", "Impossible de supprimer le produit. Veuillez réessayer."))
		return err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "product_deleted",
		slog.String("product_id", id),
		slog.String("seller_id", sellerID),
	)
	service.notifier.Notify(ctx, notify.Success("Produit supprimé", "Le produit a été supprimé avec succès."))
	return nil
}

/*
UploadImage stores a product image for sellerID and returns its public URL.

The object is written under product-images/<seller>/<name>-<uuid><ext> so
names never collide and every seller owns one folder.
*/
func (service *Service) UploadImage(ctx context.Context, sellerID, filename, contentType string, size int64, body io.Reader) (string, error) {
	if size > constants.MaxUploadBytes {
		return "", apperr.ValidationError("L'image ne doit pas dépasser 5 Mo.",
			apperr.FieldError{Field: FieldImage, Message: "L'image ne doit pas dépasser 5 Mo."})
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", apperr.ValidationError("Le fichier doit être une image.",
			apperr.FieldError{Field: FieldImage, Message: "Le fichier doit être une image."})
	}

	objectPath := ImageObjectPath(sellerID, filename)

	url, err := service.images.Upload(ctx, objectPath, contentType, io.LimitReader(body, constants.MaxUploadBytes))
	if err != nil {
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "product_image_upload_failed",
			slog.String("path", objectPath),
			slog.Any("error", err),
		)
		if gateway.IsCode(err, gateway.CodeUnavailable) {
			return "", apperr.ServiceUnavailable("Le stockage des images est momentanément indisponible").WithCause(err)
		}
		return "", apperr.Internal(err)
	}

	return url, nil
}

// ImageObjectPath builds the storage path of an uploaded image.
func ImageObjectPath(sellerID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	base := slug.From(strings.TrimSuffix(path.Base(filename), path.Ext(filename)))
	if base == "" {
		base = "image"
	}
	return path.Join(ImagePrefix, sellerID, base+"-"+uuid.New()+ext)
}

// # Helpers

func (service *Service) owned(ctx context.Context, sellerID, id, forbidden string) (*Product, error) {
	product, err := service.GetProduct(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			service.notifier.Notify(ctx, notify.Error("Produit non trouvé",
				"Le produit que vous essayez de modifier n'existe pas."))
		}
		return nil, err
	}
	if product.SellerID != sellerID {
		service.notifier.Notify(ctx, notify.Error("Accès non autorisé", forbidden))
		return nil, apperr.Forbidden(forbidden)
	}
	return product, nil
}

func validateInput(input ProductInput) error {
	validator := &validate.Validator{}

	validator.Custom(FieldName, strings.TrimSpace(input.Name) == "", "Veuillez entrer un nom pour le produit.").
		MaxLen(FieldName, input.Name, 200)

	validator.Custom(FieldPrice, !input.Price.IsPositive(), "Veuillez entrer un prix valide supérieur à 0.").
		Price(FieldPrice, input.Price)

	if input.OldPrice != nil {
		validator.Custom(FieldOldPrice, !input.OldPrice.IsPositive(), "L'ancien prix doit être un nombre valide supérieur à 0.").
			Price(FieldOldPrice, *input.OldPrice)
	}

	_, known := CategoryName(input.Category)
	validator.Custom(FieldCategory, !known, "Veuillez sélectionner une catégorie.")

	return validator.Err()
}

func (input ProductInput) applyTo(product *Product) {
	product.Name = strings.TrimSpace(input.Name)
	product.Description = strings.TrimSpace(input.Description)
	product.Price = input.Price
	product.OldPrice = input.OldPrice
	product.Category = input.Category
	product.Image = input.Image
	product.IsNew = input.IsNew
	product.IsFeatured = input.IsFeatured
}
