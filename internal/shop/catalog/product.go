// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package catalog manages the product listing of the marketplace.

Core Responsibility:

  - Discovery: public browsing by category, featured and new flags, related
    products.
  - Dashboard: sellers create, edit and delete their own products and upload
    product images to object storage.
  - Categories: the fixed set of artisan categories and their display names.
*/
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// # Domain Entities

// Product is a listed item.
type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	OldPrice    *decimal.Decimal `json:"old_price,omitempty"`
	Category    string           `json:"category"`
	Image       string           `json:"image"`
	IsNew       bool             `json:"is_new"`
	IsFeatured  bool             `json:"is_featured"`
	SellerID    string           `json:"seller_id"`
	Rating      decimal.Decimal  `json:"rating"`
	Reviews     int              `json:"reviews"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Stats summarises a seller's listing.
type Stats struct {
	ProductCount  int `json:"product_count"`
	FeaturedCount int `json:"featured_count"`
	NewCount      int `json:"new_count"`
}

// Snapshot is the copy of a product's display fields taken when it is put in
// a cart or a wishlist. Later edits to the product do not change it.
type Snapshot struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Category  string          `json:"category"`
}

// SnapshotOf copies the display fields of product.
func SnapshotOf(product *Product) Snapshot {
	return Snapshot{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		Category:  product.Category,
	}
}

// # Categories

// Category is a product category and its display name.
type Category struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// categories is ordered as shown in navigation.
var categories = []Category{
	{Key: "home-decor", Name: "Décoration Maison"},
	{Key: "textiles", Name: "Textiles"},
	{Key: "jewelry", Name: "Bijoux"},
	{Key: "ceramics", Name: "Céramiques"},
	{Key: "spices", Name: "Épices"},
	{Key: "leather", Name: "Articles en Cuir"},
	{Key: "furniture", Name: "Mobilier"},
	{Key: "lighting", Name: "Éclairage"},
}

// Categories returns every category in navigation order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryName returns the display name of key.
func CategoryName(key string) (string, bool) {
	for _, category := range categories {
		if category.Key == key {
			return category.Name, true
		}
	}
	return "", false
}

// # Field Names

const (
	FieldName     = "name"
	FieldPrice    = "price"
	FieldOldPrice = "old_price"
	FieldCategory = "category"
	FieldImage    = "image"
)
