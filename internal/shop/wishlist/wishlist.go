// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

// Package wishlist keeps the favourite products of a device.
package wishlist

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/devicestate"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/notify"
	"github.com/abbassi001/souk-bazaar-hub/internal/shop/catalog"
)

// Item is a wishlist entry.
type Item = catalog.Snapshot

// Store is the wishlist of one device. It persists like the cart, under its
// own device key.
type Store struct {
	deviceID string
	kv       devicestate.KV
	notifier notify.Notifier

	mu    sync.Mutex
	items []Item
}

// Open loads the wishlist of deviceID. Missing or undecodable state opens an
// empty wishlist; a failed read is returned. Products stored twice are kept
// once. A nil notifier routes to the request collector.
func Open(ctx context.Context, kv devicestate.KV, notifier notify.Notifier, deviceID string) (*Store, error) {
	if notifier == nil {
		notifier = notify.Request
	}

	var stored []Item
	if _, err := devicestate.LoadJSON(ctx, kv, deviceID, constants.DeviceKeyWishlist, &stored); err != nil {
		return nil, fmt.Errorf("wishlist_load_failed: %w", err)
	}

	store := &Store{deviceID: deviceID, kv: kv, notifier: notifier}
	for _, item := range stored {
		if item.ProductID != "" && store.indexOf(item.ProductID) < 0 {
			store.items = append(store.items, item)
		}
	}
	return store, nil
}

// Add saves the product. A product already present is left alone and emits
// nothing. It reports whether the wishlist changed.
func (store *Store) Add(ctx context.Context, snapshot catalog.Snapshot) bool {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.indexOf(snapshot.ProductID) >= 0 {
		return false
	}

	store.items = append(store.items, snapshot)
	store.persist(ctx)

	store.notifier.Notify(ctx, notify.Success("Ajouté aux favoris",
		fmt.Sprintf("%s a été ajouté à vos favoris", snapshot.Name)))
	return true
}

// Remove drops productID. It reports whether the product was present.
func (store *Store) Remove(ctx context.Context, productID string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()

	index := store.indexOf(productID)
	if index < 0 {
		return false
	}

	removed := store.items[index]
	store.items = slices.Delete(store.items, index, index+1)
	store.persist(ctx)

	store.notifier.Notify(ctx, notify.Success("Retiré des favoris",
		fmt.Sprintf("%s a été retiré de vos favoris", removed.Name)))
	return true
}

// Contains reports whether productID is saved.
func (store *Store) Contains(productID string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.indexOf(productID) >= 0
}

// Items returns a copy of the entries in insertion order.
func (store *Store) Items() []Item {
	store.mu.Lock()
	defer store.mu.Unlock()
	return append([]Item{}, store.items...)
}

func (store *Store) indexOf(productID string) int {
	return slices.IndexFunc(store.items, func(item Item) bool { return item.ProductID == productID })
}

func (store *Store) persist(ctx context.Context) {
	items := store.items
	if items == nil {
		items = []Item{}
	}
	if err := devicestate.SaveJSON(ctx, store.kv, store.deviceID, constants.DeviceKeyWishlist, items); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "wishlist_persist_failed",
			slog.Int("entries", len(items)),
			slog.Any("error", err),
		)
	}
}
