// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package checkout turns a device's cart into an order.

Flow:

 1. Summary: cart lines, subtotal, flat shipping and total.
 2. Place: validate the delivery details, record the order and its lines,
    clear the cart, publish checkout.completed and send the buyer to their
    account page.

Payment is cash on delivery; there is no payment, stock or fulfillment step.
*/
package checkout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ShippingFee is the flat delivery charge in MAD.
var ShippingFee = decimal.NewFromInt(50)

// Currency of every amount.
const Currency = "MAD"

// PaymentCash is the only payment method offered.
const PaymentCash = "cash"

// DefaultCountry is used when the delivery country is left blank.
const DefaultCountry = "Maroc"

// Status is the lifecycle state of an order.
type Status string

const StatusPending Status = "pending"

// # Domain Entities

// Order is a placed order.
type Order struct {
	ID        string          `json:"id"`
	BuyerID   string          `json:"buyer_id"`
	Status    Status          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	Items     []Line          `json:"items,omitempty"`
	ItemCount int             `json:"item_count"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Line is one product of an order at the price paid.
type Line struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// OrderRepository defines the data access contract for orders.
type OrderRepository interface {
	// Create records order and its lines atomically.
	Create(ctx context.Context, order *Order) error

	/*
		ListByBuyer returns the buyer's orders, newest first, without lines.

		Returns:
		  - []*Order: The page, ItemCount filled from the lines
		  - int: Total orders of the buyer
		  - error: Database retrieval failures
	*/
	ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]*Order, int, error)
}
