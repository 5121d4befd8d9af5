// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/database/schema"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/dberr"
)

// orderRepository implements [OrderRepository] using pgx.
type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository constructs a PostgreSQL backed order store.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

// Create inserts the order row and one row per line in a single transaction.
func (repository *orderRepository) Create(ctx context.Context, order *Order) error {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: failed to begin transaction: %w", err)
	}
	defer transaction.Rollback(ctx)

	orderQuery := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.Orders.Table, strings.Join(schema.Orders.Columns(), ", "))

	if _, err := transaction.Exec(ctx, orderQuery,
		order.ID,
		order.BuyerID,
		order.Status,
		order.Total,
		order.CreatedAt,
		order.UpdatedAt,
	); err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return apperr.Forbidden("Buyer profile is missing").WithCause(err)
		}
		return fmt.Errorf("postgres: failed to create order: %w", err)
	}

	lineQuery := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.OrderItems.Table, strings.Join(schema.OrderItems.Columns(), ", "))

	batch := &pgx.Batch{}
	for _, line := range order.Items {
		batch.Queue(lineQuery, line.ID, order.ID, line.ProductID, line.Quantity, line.PriceAtPurchase, order.CreatedAt)
	}
	if err := transaction.SendBatch(ctx, batch).Close(); err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return apperr.Conflict("Un produit de votre panier n'est plus disponible.").WithCause(err)
		}
		return fmt.Errorf("postgres: failed to create order items: %w", err)
	}

	if err := transaction.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: failed to commit order transaction: %w", err)
	}
	return nil
}

// ListByBuyer pages the buyer's orders with their unit counts.
func (repository *orderRepository) ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]*Order, int, error) {
	query := fmt.Sprintf(`
		SELECT o.%s, o.%s, o.%s, o.%s, o.%s, o.%s,
			COALESCE((SELECT SUM(i.%s) FROM %s i WHERE i.%s = o.%s), 0) AS item_count,
			COUNT(*) OVER() AS total_count
		FROM %s o
		WHERE o.%s = $1
		ORDER BY o.%s DESC, o.%s DESC
		LIMIT $2 OFFSET $3`,
		schema.Orders.ID, schema.Orders.BuyerID, schema.Orders.Status,
		schema.Orders.Total, schema.Orders.CreatedAt, schema.Orders.UpdatedAt,
		schema.OrderItems.Quantity, schema.OrderItems.Table, schema.OrderItems.OrderID, schema.Orders.ID,
		schema.Orders.Table,
		schema.Orders.BuyerID,
		schema.Orders.CreatedAt, schema.Orders.ID,
	)

	rows, err := repository.pool.Query(ctx, query, buyerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*Order{}
	var totalCount int
	for rows.Next() {
		order := &Order{}
		if err := rows.Scan(
			&order.ID,
			&order.BuyerID,
			&order.Status,
			&order.Total,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.ItemCount,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to iterate orders: %w", err)
	}

	return orders, totalCount, nil
}
