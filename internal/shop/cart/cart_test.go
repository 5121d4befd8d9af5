// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package cart_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/devicestate"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/notify"
	"github.com/abbassi001/souk-bazaar-hub/internal/shop/cart"
	"github.com/abbassi001/souk-bazaar-hub/internal/shop/catalog"
)

const deviceID = "0192f1c4-7b7e-7a35-9d3c-6a1f0b2e4c11"

var (
	tajine = catalog.Snapshot{
		ProductID: "0192f1c4-1111-7a35-9d3c-6a1f0b2e4c11",
		Name:      "Tajine en Terre Cuite",
		Price:     decimal.RequireFromString("350"),
		Image:     "https://storage.example/souk/product-images/tajine.jpg",
		Category:  "ceramics",
	}
	pouf = catalog.Snapshot{
		ProductID: "0192f1c4-2222-7a35-9d3c-6a1f0b2e4c11",
		Name:      "Pouf en Cuir",
		Price:     decimal.RequireFromString("480.5"),
		Image:     "https://storage.example/souk/product-images/pouf.jpg",
		Category:  "leather",
	}
	lanterne = catalog.Snapshot{
		ProductID: "0192f1c4-3333-7a35-9d3c-6a1f0b2e4c11",
		Name:      "Lanterne Marocaine",
		Price:     decimal.RequireFromString("275"),
		Category:  "lighting",
	}
)

func openCart(t *testing.T, kv devicestate.KV) *cart.Store {
	t.Helper()

	store, err := cart.Open(context.Background(), kv, nil, deviceID)
	require.NoError(t, err)
	return store
}

func TestAdd_RepeatedAddsMergeIntoOneLine(t *testing.T) {
	for _, adds := range []int{1, 2, 5} {
		store := openCart(t, devicestate.NewMemoryKV())
		for range adds {
			store.Add(context.Background(), tajine)
		}

		items := store.Items()
		require.Len(t, items, 1)
		assert.Equal(t, tajine.ProductID, items[0].ProductID)
		assert.Equal(t, adds, items[0].Quantity)
	}
}

func TestAdd_NotifiesEveryTime(t *testing.T) {
	store := openCart(t, devicestate.NewMemoryKV())
	ctx, collector := notify.WithCollector(context.Background())

	store.Add(ctx, tajine)
	store.Add(ctx, tajine)

	added := notify.Success("Ajouté au panier", "Tajine en Terre Cuite a été ajouté à votre panier")
	assert.Equal(t, []notify.Notification{added, added}, collector.All())
}

func TestAdd_KeepsFirstSnapshot(t *testing.T) {
	store := openCart(t, devicestate.NewMemoryKV())
	store.Add(context.Background(), tajine)

	repriced := tajine
	repriced.Price = decimal.RequireFromString("999")
	store.Add(context.Background(), repriced)

	assert.True(t, store.Items()[0].Price.Equal(tajine.Price))
}

func TestItemCount_SumsQuantities(t *testing.T) {
	store := openCart(t, devicestate.NewMemoryKV())
	ctx := context.Background()

	store.Add(ctx, tajine)
	store.Add(ctx, tajine)
	store.Add(ctx, pouf)

	assert.Equal(t, 3, store.ItemCount())
	assert.Equal(t, 2, store.Lines())
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		productID string
		quantity  int
		changed   bool
		want      int
	}{
		{"sets exactly", tajine.ProductID, 7, true, 7},
		{"one is allowed", tajine.ProductID, 1, true, 1},
		{"zero rejected", tajine.ProductID, 0, false, 2},
		{"negative rejected", tajine.ProductID, -4, false, 2},
		{"unknown product", pouf.ProductID, 3, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := devicestate.NewMemoryKV()
			store := openCart(t, kv)
			store.Add(context.Background(), tajine)
			store.Add(context.Background(), tajine)

			changed := store.UpdateQuantity(context.Background(), tt.productID, tt.quantity)

			assert.Equal(t, tt.changed, changed)
			require.Len(t, store.Items(), 1)
			assert.Equal(t, tt.want, store.Items()[0].Quantity)
			assert.Equal(t, tt.want, openCart(t, kv).ItemCount())
		})
	}
}

func TestRemove(t *testing.T) {
	store := openCart(t, devicestate.NewMemoryKV())
	store.Add(context.Background(), tajine)
	store.Add(context.Background(), pouf)

	ctx, collector := notify.WithCollector(context.Background())

	assert.True(t, store.Remove(ctx, tajine.ProductID))
	assert.False(t, store.Remove(ctx, tajine.ProductID))

	assert.Equal(t, []notify.Notification{
		notify.Success("Article retiré", "Tajine en Terre Cuite a été retiré de votre panier"),
	}, collector.All())
	require.Len(t, store.Items(), 1)
	assert.Equal(t, pouf.ProductID, store.Items()[0].ProductID)
}

func TestClear_NotifiesOnceEvenWhenEmpty(t *testing.T) {
	for _, lines := range []int{0, 3} {
		store := openCart(t, devicestate.NewMemoryKV())
		for _, snapshot := range []catalog.Snapshot{tajine, pouf, lanterne}[:lines] {
			store.Add(context.Background(), snapshot)
		}

		ctx, collector := notify.WithCollector(context.Background())
		store.Clear(ctx)

		assert.Empty(t, store.Items())
		assert.Equal(t, []notify.Notification{
			notify.Success("Panier vidé", "Tous les articles ont été retirés de votre panier"),
		}, collector.All())
	}
}

func TestSubtotal(t *testing.T) {
	store := openCart(t, devicestate.NewMemoryKV())
	ctx := context.Background()

	store.Add(ctx, tajine)
	store.Add(ctx, tajine)
	store.Add(ctx, pouf)

	assert.True(t, decimal.RequireFromString("1180.5").Equal(store.Subtotal()), store.Subtotal().String())
}

func TestPersistence_RoundTrip(t *testing.T) {
	kv := devicestate.NewMemoryKV()
	store := openCart(t, kv)
	ctx := context.Background()

	store.Add(ctx, tajine)
	store.Add(ctx, pouf)
	store.Add(ctx, pouf)
	store.Add(ctx, lanterne)
	store.UpdateQuantity(ctx, lanterne.ProductID, 4)

	reloaded := openCart(t, kv)

	assert.Equal(t, store.Items(), reloaded.Items())
	assert.Equal(t, []int{1, 2, 4}, []int{
		reloaded.Items()[0].Quantity,
		reloaded.Items()[1].Quantity,
		reloaded.Items()[2].Quantity,
	})
}

func TestPersistence_StoredShape(t *testing.T) {
	kv := devicestate.NewMemoryKV()
	openCart(t, kv).Add(context.Background(), pouf)

	raw, found, err := kv.Get(context.Background(), deviceID, constants.DeviceKeyCart)
	require.NoError(t, err)
	require.True(t, found)

	var stored []map[string]any
	require.NoError(t, json.Unmarshal(raw, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, pouf.ProductID, stored[0]["id"])
	assert.Equal(t, "480.5", stored[0]["price"])
	assert.Equal(t, float64(1), stored[0]["quantity"])
}

func TestOpen_CorruptOrMissingIsEmpty(t *testing.T) {
	kv := devicestate.NewMemoryKV()
	assert.Empty(t, openCart(t, kv).Items())

	require.NoError(t, kv.Set(context.Background(), deviceID, constants.DeviceKeyCart, []byte(`{"oops":`)))
	assert.Empty(t, openCart(t, kv).Items())

	require.NoError(t, kv.Set(context.Background(), deviceID, constants.DeviceKeyCart,
		[]byte(`[{"id":"","quantity":2},{"id":"x","quantity":0}]`)))
	assert.Empty(t, openCart(t, kv).Items())
}

func TestPersistFailure_KeepsMemoryState(t *testing.T) {
	kv := devicestate.NewMemoryKV()
	kv.FailWrites = errors.New("redis down")
	store := openCart(t, kv)

	store.Add(context.Background(), tajine)

	assert.Equal(t, 1, store.ItemCount())
}

func TestOpen_MergesDuplicateLines(t *testing.T) {
	kv := devicestate.NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), deviceID, constants.DeviceKeyCart, []byte(`[
		{"id":"`+tajine.ProductID+`","name":"Tajine en Terre Cuite","price":"350","quantity":2},
		{"id":"`+pouf.ProductID+`","name":"Pouf en Cuir","price":"480.5","quantity":1},
		{"id":"`+tajine.ProductID+`","name":"Tajine (ancien)","price":"300","quantity":3}
	]`)))

	store := openCart(t, kv)

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, tajine.ProductID, items[0].ProductID)
	assert.Equal(t, "Tajine en Terre Cuite", items[0].Name)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 6, store.ItemCount())

	assert.True(t, store.Remove(context.Background(), tajine.ProductID))
	assert.False(t, store.Remove(context.Background(), tajine.ProductID))
	assert.Equal(t, 1, openCart(t, kv).ItemCount())
}

func TestOpen_ReadFailureIsReturned(t *testing.T) {
	kv := devicestate.NewMemoryKV()
	openCart(t, kv).Add(context.Background(), tajine)
	kv.FailReads = errors.New("redis timeout")

	store, err := cart.Open(context.Background(), kv, nil, deviceID)

	assert.ErrorIs(t, err, kv.FailReads)
	assert.Nil(t, store)
}

/*
TestRegistry_ReadFailureKeepsPersistedCart reopens a cart after a failed read
and checks the stored lines survive the next mutation.
*/
func TestRegistry_ReadFailureKeepsPersistedCart(t *testing.T) {
	ctx := context.Background()
	kv := devicestate.NewMemoryKV()
	seeded := openCart(t, kv)
	for range 3 {
		seeded.Add(ctx, tajine)
	}

	carts := devicestate.NewRegistry(func(ctx context.Context, id string) (*cart.Store, error) {
		return cart.Open(ctx, kv, nil, id)
	}, time.Hour)

	kv.FailReads = errors.New("redis timeout")
	_, err := carts.Get(ctx, deviceID)
	require.Error(t, err)
	kv.FailReads = nil

	store, err := carts.Get(ctx, deviceID)
	require.NoError(t, err)
	assert.Equal(t, 3, store.ItemCount())

	store.Add(ctx, pouf)

	assert.Equal(t, 4, store.ItemCount())
	assert.Equal(t, 4, openCart(t, kv).ItemCount())
}

func TestContents_IsConsistent(t *testing.T) {
	store := openCart(t, devicestate.NewMemoryKV())
	store.Add(context.Background(), tajine)
	store.Add(context.Background(), pouf)
	store.Add(context.Background(), pouf)

	contents := store.Contents()

	require.Len(t, contents.Items, 2)
	assert.Equal(t, 3, contents.ItemCount)
	assert.True(t, decimal.RequireFromString("1311").Equal(contents.Subtotal), contents.Subtotal.String())
}

func TestRemoveOrdered(t *testing.T) {
	t.Run("everything ordered", func(t *testing.T) {
		kv := devicestate.NewMemoryKV()
		store := openCart(t, kv)
		store.Add(context.Background(), tajine)
		store.Add(context.Background(), pouf)
		ordered := store.Contents().Items

		ctx, collector := notify.WithCollector(context.Background())
		store.RemoveOrdered(ctx, ordered)

		assert.Empty(t, store.Items())
		assert.Empty(t, openCart(t, kv).Items())
		assert.Equal(t, []notify.Notification{
			notify.Success("Panier vidé", "Tous les articles ont été retirés de votre panier"),
		}, collector.All())
	})

	t.Run("units added after the snapshot stay", func(t *testing.T) {
		kv := devicestate.NewMemoryKV()
		store := openCart(t, kv)
		store.Add(context.Background(), tajine)
		ordered := store.Contents().Items

		store.Add(context.Background(), tajine)
		store.Add(context.Background(), lanterne)

		ctx, collector := notify.WithCollector(context.Background())
		store.RemoveOrdered(ctx, ordered)

		items := store.Items()
		require.Len(t, items, 2)
		assert.Equal(t, tajine.ProductID, items[0].ProductID)
		assert.Equal(t, 1, items[0].Quantity)
		assert.Equal(t, lanterne.ProductID, items[1].ProductID)
		assert.Equal(t, 2, openCart(t, kv).ItemCount())
		require.Len(t, collector.All(), 1)
		assert.Equal(t, notify.CategoryInfo, collector.All()[0].Category)
	})
}
