// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package devicestate stores the state a browser keeps between visits.

A device is identified by the opaque id of the device cookie. Each device owns
a small key/value namespace ("cart", "wishlist", "return_path",
"display_name"). Values are opaque bytes; callers encode JSON.

Architecture:

  - [KV] is the storage contract. [RedisKV] backs production, [MemoryKV] backs
    tests and local runs without Redis.
  - [Registry] keeps one live object per device (a cart store, a session
    mirror) and evicts idle ones in the background.
*/
package devicestate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
)

// KV is the per-device key/value namespace.
type KV interface {
	// Get returns the value under key. found is false when the key is absent.
	Get(ctx context.Context, deviceID, key string) (value []byte, found bool, err error)

	// Set replaces the value under key.
	Set(ctx context.Context, deviceID, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, deviceID, key string) error
}

/*
LoadJSON decodes the value under key into target and reports whether one was
found.

A missing key or an undecodable value leaves target untouched and reports
false with a nil error: such state starts empty. A read failure is returned
so callers do not mistake an unreachable store for an empty one.
*/
func LoadJSON(ctx context.Context, kv KV, deviceID, key string, target any) (bool, error) {
	raw, found, err := kv.Get(ctx, deviceID, key)
	if err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "device_state_read_failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return false, fmt.Errorf("devicestate_read_failed: %w", err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "device_state_corrupt",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return false, nil
	}
	return true, nil
}

// SaveJSON encodes value and writes it under key.
func SaveJSON(ctx context.Context, kv KV, deviceID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("devicestate_encode_failed: %w", err)
	}
	if err := kv.Set(ctx, deviceID, key, raw); err != nil {
		return fmt.Errorf("devicestate_write_failed: %w", err)
	}
	return nil
}
