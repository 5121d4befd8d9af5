// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package cart keeps the shopping cart of a device.

A [Store] owns the cart lines of one device. Lines are snapshots of the
product taken when it was first added. Every mutation is written back to
device state before the store lock is released, so the persisted cart never
lags behind or overtakes the in-memory one.
*/
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/devicestate"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/notify"
	"github.com/abbassi001/souk-bazaar-hub/internal/shop/catalog"
	"github.com/abbassi001/souk-bazaar-hub/pkg/slice"
)

// Item is one cart line.
type Item struct {
	catalog.Snapshot
	Quantity int `json:"quantity"`
}

// LineTotal is price × quantity.
func (item Item) LineTotal() decimal.Decimal {
	return item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// Store is the cart of one device.
type Store struct {
	deviceID string
	kv       devicestate.KV
	notifier notify.Notifier

	mu    sync.Mutex
	items []Item
}

// Open loads the cart of deviceID. Missing or undecodable state opens an
// empty cart; a failed read is returned so the caller never replaces a cart it
// could not see. Lines stored twice for one product are merged. A nil
// notifier routes to the request collector.
func Open(ctx context.Context, kv devicestate.KV, notifier notify.Notifier, deviceID string) (*Store, error) {
	if notifier == nil {
		notifier = notify.Request
	}

	var stored []Item
	if _, err := devicestate.LoadJSON(ctx, kv, deviceID, constants.DeviceKeyCart, &stored); err != nil {
		return nil, fmt.Errorf("cart_load_failed: %w", err)
	}

	store := &Store{deviceID: deviceID, kv: kv, notifier: notifier}
	for _, item := range stored {
		if item.ProductID == "" || item.Quantity < 1 {
			continue
		}
		if index := store.indexOf(item.ProductID); index >= 0 {
			store.items[index].Quantity += item.Quantity
			continue
		}
		store.items = append(store.items, item)
	}
	return store, nil
}

// # Mutations

// Add puts one unit of the product in the cart. A product already in the
// cart gets its quantity incremented; its snapshot is kept.
func (store *Store) Add(ctx context.Context, snapshot catalog.Snapshot) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if index := store.indexOf(snapshot.ProductID); index >= 0 {
		store.items[index].Quantity++
	} else {
		store.items = append(store.items, Item{Snapshot: snapshot, Quantity: 1})
	}
	store.persist(ctx)

	store.notifier.Notify(ctx, notify.Success("Ajouté au panier",
		fmt.Sprintf("%s a été ajouté à votre panier", snapshot.Name)))
}

// Remove deletes the line of productID. It reports whether a line existed.
func (store *Store) Remove(ctx context.Context, productID string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()

	index := store.indexOf(productID)
	if index < 0 {
		return false
	}

	removed := store.items[index]
	store.items = append(store.items[:index], store.items[index+1:]...)
	store.persist(ctx)

	store.notifier.Notify(ctx, notify.Success("Article retiré",
		fmt.Sprintf("%s a été retiré de votre panier", removed.Name)))
	return true
}

// UpdateQuantity sets the quantity of productID. Quantities below one and
// unknown products are ignored. It reports whether the cart changed.
func (store *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) bool {
	if quantity < 1 {
		return false
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	index := store.indexOf(productID)
	if index < 0 {
		return false
	}

	store.items[index].Quantity = quantity
	store.persist(ctx)
	return true
}

// Clear empties the cart.
func (store *Store) Clear(ctx context.Context) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.items = nil
	store.persist(ctx)

	store.notifier.Notify(ctx, notify.Success("Panier vidé",
		"Tous les articles ont été retirés de votre panier"))
}

/*
RemoveOrdered takes the ordered quantities out of the cart.

Units added after ordered was read stay in the cart. An emptied cart emits the
same notification as [Store.Clear]; otherwise one info notification reports
what is left.
*/
func (store *Store) RemoveOrdered(ctx context.Context, ordered []Item) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, line := range ordered {
		if index := store.indexOf(line.ProductID); index >= 0 {
			store.items[index].Quantity -= line.Quantity
		}
	}
	store.items = slice.Filter(store.items, func(item Item) bool { return item.Quantity >= 1 })
	if len(store.items) == 0 {
		store.items = nil
	}
	store.persist(ctx)

	if len(store.items) == 0 {
		store.notifier.Notify(ctx, notify.Success("Panier vidé",
			"Tous les articles ont été retirés de votre panier"))
		return
	}
	store.notifier.Notify(ctx, notify.Info("Panier mis à jour",
		"Les articles ajoutés pendant la commande sont restés dans votre panier"))
}

// # Reads

// Contents is the cart read under a single lock, so its totals always match
// its lines.
type Contents struct {
	Items     []Item
	ItemCount int
	Subtotal  decimal.Decimal
}

// Contents returns a consistent copy of the cart.
func (store *Store) Contents() Contents {
	store.mu.Lock()
	defer store.mu.Unlock()

	items := make([]Item, len(store.items))
	copy(items, store.items)

	return Contents{
		Items: items,
		ItemCount: slice.Reduce(items, 0, func(total int, item Item) int {
			return total + item.Quantity
		}),
		Subtotal: slice.Reduce(items, decimal.Zero, func(total decimal.Decimal, item Item) decimal.Decimal {
			return total.Add(item.LineTotal())
		}),
	}
}

// Items returns a copy of the cart lines in insertion order.
func (store *Store) Items() []Item {
	store.mu.Lock()
	defer store.mu.Unlock()

	out := make([]Item, len(store.items))
	copy(out, store.items)
	return out
}

// ItemCount is the number of units in the cart, summed over all lines.
func (store *Store) ItemCount() int {
	store.mu.Lock()
	defer store.mu.Unlock()

	return slice.Reduce(store.items, 0, func(total int, item Item) int {
		return total + item.Quantity
	})
}

// Lines is the number of distinct products in the cart.
func (store *Store) Lines() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.items)
}

// Subtotal is the sum of the line totals.
func (store *Store) Subtotal() decimal.Decimal {
	store.mu.Lock()
	defer store.mu.Unlock()

	return slice.Reduce(store.items, decimal.Zero, func(total decimal.Decimal, item Item) decimal.Decimal {
		return total.Add(item.LineTotal())
	})
}

// # Helpers

func (store *Store) indexOf(productID string) int {
	for i, item := range store.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// persist writes the cart while the caller holds the lock. A failed write is
// logged; the in-memory cart stays authoritative until the next mutation.
func (store *Store) persist(ctx context.Context) {
	items := store.items
	if items == nil {
		items = []Item{}
	}
	if err := devicestate.SaveJSON(ctx, store.kv, store.deviceID, constants.DeviceKeyCart, items); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "cart_persist_failed",
			slog.Int("lines", len(items)),
			slog.Any("error", err),
		)
	}
}
