// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package catalog

import "context"

// Sort orders a product listing.
type Sort string

const (
	SortNewest    Sort = "newest"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortRating    Sort = "rating"
)

// Filter narrows a product listing. Zero values do not filter.
type Filter struct {
	Category string
	// Categories matches any of several categories. It is ignored when empty.
	Categories []string
	SellerID string
	Featured *bool
	New      *bool
	Query    string
	Sort     Sort
	// ExcludeID drops one product from the result.
	ExcludeID string
}

// ProductRepository defines the data access contract for products.
type ProductRepository interface {
	/*
		List returns a filtered, paginated slice of products and the total count.

		Returns:
		  - []*Product: The page of matching products
		  - int: Total count matching the filter
		  - error: Database retrieval failures
	*/
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Product, int, error)

	// FindByID returns apperr.NotFound when id does not exist.
	FindByID(ctx context.Context, id string) (*Product, error)

	// Create persists a new product.
	Create(ctx context.Context, product *Product) error

	// Update persists the mutable fields of product.
	Update(ctx context.Context, product *Product) error

	// Delete removes the product with id.
	Delete(ctx context.Context, id string) error

	// Stats counts the listing of sellerID.
	Stats(ctx context.Context, sellerID string) (*Stats, error)
}
