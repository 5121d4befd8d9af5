// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package checkout

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/events"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/notify"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/validate"
	"github.com/abbassi001/souk-bazaar-hub/internal/shop/cart"
	"github.com/abbassi001/souk-bazaar-hub/pkg/slice"
	"github.com/abbassi001/souk-bazaar-hub/pkg/uuid"
)

// Summary is the cart as shown on the checkout page.
type Summary struct {
	Items     []cart.Item     `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
}

// Details is the delivery form.
type Details struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
	PaymentMethod string `json:"payment_method"`
}

// CompletedEvent is the payload of [events.CheckoutCompleted].
type CompletedEvent struct {
	OrderID   string          `json:"order_id"`
	BuyerID   string          `json:"buyer_id"`
	Email     string          `json:"email"`
	City      string          `json:"city"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	PlacedAt  time.Time       `json:"placed_at"`
}

// Receipt is the outcome of a placed order.
type Receipt struct {
	Order    *Order `json:"order"`
	Redirect string `json:"redirect"`
}

// # Service Layer

// Service places orders.
type Service struct {
	orders    OrderRepository
	publisher events.Publisher
	notifier  notify.Notifier
	now       func() time.Time
}

// NewService constructs a new [Service]. A nil notifier routes to the request collector.
func NewService(orders OrderRepository, publisher events.Publisher, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Request
	}
	return &Service{orders: orders, publisher: publisher, notifier: notifier, now: time.Now}
}

// Summarize prices one consistent read of the cart with the flat shipping fee.
func Summarize(store *cart.Store) Summary {
	contents := store.Contents()
	subtotal := contents.Subtotal
	return Summary{
		Items:     contents.Items,
		ItemCount: contents.ItemCount,
		Subtotal:  subtotal,
		Shipping:  ShippingFee,
		Total:     subtotal.Add(ShippingFee),
		Currency:  Currency,
	}
}

/*
PlaceOrder records the cart of store as an order of buyerID.

The order holds the cart as read once at the start. On success exactly those
quantities leave the cart, "Commande confirmée!" is emitted and
checkout.completed is published. The receipt redirects to the account page.

Returns:
  - *Receipt: the order and where to go next
  - error: VALIDATION_ERROR for an empty cart or incomplete details, or the
    storage failure
*/
func (service *Service) PlaceOrder(ctx context.Context, buyerID string, store *cart.Store, details Details) (*Receipt, error) {
	summary := Summarize(store)
	if err := service.validate(ctx, summary, &details); err != nil {
		return nil, err
	}

	now := service.now().UTC()

	order := &Order{
		ID:        uuid.New(),
		BuyerID:   buyerID,
		Status:    StatusPending,
		Total:     summary.Total,
		ItemCount: summary.ItemCount,
		CreatedAt: now,
		UpdatedAt: now,
		Items: slice.Map(summary.Items, func(item cart.Item) Line {
			return Line{
				ID:              uuid.New(),
				ProductID:       item.ProductID,
				Quantity:        item.Quantity,
				PriceAtPurchase: item.Price,
			}
		}),
	}

	if err := service.orders.Create(ctx, order); err != nil {
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "order_create_failed",
			slog.String("buyer_id", buyerID),
			slog.Any("error", err),
		)
		service.notifier.Notify(ctx, notify.Error("Erreur",
			"Impossible d'enregistrer votre commande. Veuillez réessayer."))
		return nil, err
	}

	store.RemoveOrdered(ctx, summary.Items)

	ctxutil.GetLogger(ctx).InfoContext(ctx, "order_placed",
		slog.String("order_id", order.ID),
		slog.String("buyer_id", buyerID),
		slog.String("total", order.Total.StringFixed(2)),
	)

	// The order is recorded; a broker failure does not undo it.
	_ = service.publisher.Publish(ctx, events.CheckoutCompleted, CompletedEvent{
		OrderID:   order.ID,
		BuyerID:   buyerID,
		Email:     details.Email,
		City:      details.City,
		Total:     order.Total,
		ItemCount: order.ItemCount,
		PlacedAt:  now,
	})

	service.notifier.Notify(ctx, notify.Success("Commande confirmée!",
		"Votre commande a été enregistrée avec succès."))

	return &Receipt{Order: order, Redirect: constants.PathAccount}, nil
}

// ListOrders pages the orders of buyerID.
func (service *Service) ListOrders(ctx context.Context, buyerID string, limit, offset int) ([]*Order, int, error) {
	return service.orders.ListByBuyer(ctx, buyerID, limit, offset)
}

func (service *Service) validate(ctx context.Context, summary Summary, details *Details) error {
	if len(summary.Items) == 0 {
		service.notifier.Notify(ctx, notify.Error("Panier vide",
			"Ajoutez des articles à votre panier avant de passer commande."))
		return apperr.ValidationError("Votre panier est vide.")
	}

	if strings.TrimSpace(details.Country) == "" {
		details.Country = DefaultCountry
	}
	if details.PaymentMethod == "" {
		details.PaymentMethod = PaymentCash
	}

	validator := &validate.Validator{}
	validator.
		Required("first_name", details.FirstName).
		Required("last_name", details.LastName).
		Required("email", details.Email).
		Required("phone", details.Phone).
		Required("address", details.Address).
		Required("city", details.City).
		Required("postal_code", details.PostalCode).
		OneOf("payment_method", details.PaymentMethod, PaymentCash)

	if strings.TrimSpace(details.Email) != "" {
		validator.Email("email", details.Email)
	}

	if err := validator.Err(); err != nil {
		service.notifier.Notify(ctx, notify.Error("Erreur de validation",
			"Veuillez remplir tous les champs obligatoires."))
		return err
	}
	return nil
}
