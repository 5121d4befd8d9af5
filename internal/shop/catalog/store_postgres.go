// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/database/schema"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/dberr"
)

// # PostgreSQL Repository

// productRepository implements [ProductRepository] using pgx.
type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository constructs a PostgreSQL backed product store.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

func productColumns(alias string) string {
	columns := schema.Products.Columns()
	for i, column := range columns {
		columns[i] = alias + "." + column
	}
	return strings.Join(columns, ", ")
}

// scanProduct reads the columns of [productColumns] followed by extra targets.
func scanProduct(row pgx.Row, extra ...any) (*Product, error) {
	product := &Product{}
	var oldPrice decimal.NullDecimal

	targets := append([]any{
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&oldPrice,
		&product.Category,
		&product.Image,
		&product.IsNew,
		&product.IsFeatured,
		&product.SellerID,
		&product.Rating,
		&product.Reviews,
		&product.CreatedAt,
		&product.UpdatedAt,
	}, extra...)

	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	if oldPrice.Valid {
		product.OldPrice = &oldPrice.Decimal
	}
	return product, nil
}

func nullable(price *decimal.Decimal) decimal.NullDecimal {
	if price == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *price, Valid: true}
}

/*
List returns a filtered, paginated slice of products and the total count.

Description: The total is computed with COUNT(*) OVER() in the same round-trip.
Ties are broken by id so pages are stable.
*/
func (repository *productRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*Product, int, error) {
	var queryBuilder strings.Builder
	var args []any
	argID := 1

	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s p
		WHERE TRUE`,
		productColumns("p"),
		schema.Products.Table,
	))

	if filter.Category != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND p.%s = $%d", schema.Products.Category, argID))
		args = append(args, filter.Category)
		argID++
	}

	if len(filter.Categories) > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" AND p.%s = ANY($%d)", schema.Products.Category, argID))
		args = append(args, filter.Categories)
		argID++
	}

	if filter.SellerID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND p.%s = $%d", schema.Products.SellerID, argID))
		args = append(args, filter.SellerID)
		argID++
	}

	if filter.Featured != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND p.%s = $%d", schema.Products.IsFeatured, argID))
		args = append(args, *filter.Featured)
		argID++
	}

	if filter.New != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND p.%s = $%d", schema.Products.IsNew, argID))
		args = append(args, *filter.New)
		argID++
	}

	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND p.%s ILIKE '%%' || $%d || '%%'", schema.Products.Name, argID))
		args = append(args, filter.Query)
		argID++
	}

	if filter.ExcludeID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND p.%s <> $%d", schema.Products.ID, argID))
		args = append(args, filter.ExcludeID)
		argID++
	}

	sort := fmt.Sprintf("p.%s DESC", schema.Products.CreatedAt)
	switch filter.Sort {
	case SortPriceAsc:
		sort = fmt.Sprintf("p.%s ASC", schema.Products.Price)
	case SortPriceDesc:
		sort = fmt.Sprintf("p.%s DESC", schema.Products.Price)
	case SortRating:
		sort = fmt.Sprintf("p.%s DESC", schema.Products.Rating)
	}
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s, p.%s DESC", sort, schema.Products.ID))

	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*Product{}
	var totalCount int
	for rows.Next() {
		product, err := scanProduct(rows, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to iterate products: %w", err)
	}

	return products, totalCount, nil
}

// FindByID retrieves a product by its primary key.
func (repository *productRepository) FindByID(ctx context.Context, id string) (*Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s p WHERE p.%s = $1`,
		productColumns("p"), schema.Products.Table, schema.Products.ID)

	product, err := scanProduct(repository.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Product")
	}
	return product, nil
}

// Create inserts product. Rating and review count start at zero.
func (repository *productRepository) Create(ctx context.Context, product *Product) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		schema.Products.Table, strings.Join(schema.Products.Columns(), ", "))

	_, err := repository.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		nullable(product.OldPrice),
		product.Category,
		product.Image,
		product.IsNew,
		product.IsFeatured,
		product.SellerID,
		product.Rating,
		product.Reviews,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return apperr.Forbidden("Seller profile is missing").WithCause(err)
		}
		return fmt.Errorf("postgres: failed to create product: %w", err)
	}
	return nil
}

// Update persists the seller-editable fields.
func (repository *productRepository) Update(ctx context.Context, product *Product) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9, %s = $10
		WHERE %s = $1`,
		schema.Products.Table,
		schema.Products.Name,
		schema.Products.Description,
		schema.Products.Price,
		schema.Products.OldPrice,
		schema.Products.Category,
		schema.Products.Image,
		schema.Products.IsNew,
		schema.Products.IsFeatured,
		schema.Products.UpdatedAt,
		schema.Products.ID,
	)

	tag, err := repository.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		nullable(product.OldPrice),
		product.Category,
		product.Image,
		product.IsNew,
		product.IsFeatured,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Product")
	}
	return nil
}

// Delete removes a product row.
func (repository *productRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Products.Table, schema.Products.ID)

	tag, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return apperr.Conflict("Product is referenced by an order").WithCause(err)
		}
		return fmt.Errorf("postgres: failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Product")
	}
	return nil
}

// Stats counts a seller's products with aggregate filters in one scan.
func (repository *productRepository) Stats(ctx context.Context, sellerID string) (*Stats, error) {
	query := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE %s),
			COUNT(*) FILTER (WHERE %s)
		FROM %s
		WHERE %s = $1`,
		schema.Products.IsFeatured,
		schema.Products.IsNew,
		schema.Products.Table,
		schema.Products.SellerID,
	)

	stats := &Stats{}
	if err := repository.pool.QueryRow(ctx, query, sellerID).Scan(&stats.ProductCount, &stats.FeaturedCount, &stats.NewCount); err != nil {
		return nil, fmt.Errorf("postgres: failed to count products: %w", err)
	}
	return stats, nil
}
