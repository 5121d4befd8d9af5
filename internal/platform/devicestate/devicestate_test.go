// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package devicestate_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/devicestate"
)

type payload struct {
	Names []string `json:"names"`
}

/*
TestJSON_RoundTrip verifies a saved value loads back for the same device only.
*/
func TestJSON_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := devicestate.NewMemoryKV()

	require.NoError(t, devicestate.SaveJSON(ctx, kv, "dev-a", "cart", payload{Names: []string{"tajine", "pouf"}}))

	var loaded payload
	found, err := devicestate.LoadJSON(ctx, kv, "dev-a", "cart", &loaded)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"tajine", "pouf"}, loaded.Names)

	var other payload
	found, err = devicestate.LoadJSON(ctx, kv, "dev-b", "cart", &other)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, other.Names)
}

/*
TestLoadJSON_Corrupt treats an undecodable value as absent.
*/
func TestLoadJSON_Corrupt(t *testing.T) {
	ctx := context.Background()
	kv := devicestate.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "dev-a", "cart", []byte("{not json")))

	var loaded payload
	found, err := devicestate.LoadJSON(ctx, kv, "dev-a", "cart", &loaded)
	require.NoError(t, err)
	assert.False(t, found)
}

/*
TestLoadJSON_ReadFailure keeps an unreachable store apart from an empty one.
*/
func TestLoadJSON_ReadFailure(t *testing.T) {
	ctx := context.Background()
	kv := devicestate.NewMemoryKV()
	require.NoError(t, devicestate.SaveJSON(ctx, kv, "dev-a", "cart", payload{Names: []string{"tajine"}}))
	kv.FailReads = errors.New("redis timeout")

	var loaded payload
	found, err := devicestate.LoadJSON(ctx, kv, "dev-a", "cart", &loaded)

	assert.ErrorIs(t, err, kv.FailReads)
	assert.False(t, found)
	assert.Empty(t, loaded.Names)
}

func TestSaveJSON_WriteFailure(t *testing.T) {
	kv := devicestate.NewMemoryKV()
	kv.FailWrites = errors.New("redis down")

	err := devicestate.SaveJSON(context.Background(), kv, "dev-a", "cart", payload{})
	assert.ErrorIs(t, err, kv.FailWrites)
}

func TestMemoryKV_Delete(t *testing.T) {
	ctx := context.Background()
	kv := devicestate.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, "dev-a", "return_path", []byte(`"/dashboard"`)))

	require.NoError(t, kv.Delete(ctx, "dev-a", "return_path"))
	require.NoError(t, kv.Delete(ctx, "dev-a", "missing"))

	_, found, err := kv.Get(ctx, "dev-a", "return_path")
	require.NoError(t, err)
	assert.False(t, found)
}

/*
TestRegistry_OpensOncePerDevice checks concurrent first access shares one object.
*/
func TestRegistry_OpensOncePerDevice(t *testing.T) {
	var opened atomic.Int32
	registry := devicestate.NewRegistry(func(_ context.Context, deviceID string) (*string, error) {
		opened.Add(1)
		value := deviceID
		return &value, nil
	}, time.Hour)

	var wg sync.WaitGroup
	results := make([]*string, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = registry.Get(context.Background(), "dev-a")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), opened.Load())
	for _, result := range results {
		assert.Same(t, results[0], result)
	}

	_, err := registry.Get(context.Background(), "dev-b")
	require.NoError(t, err)
	assert.Equal(t, 2, registry.Len())
}

/*
TestRegistry_FailedOpenIsRetried checks a failed open is not kept for the device.
*/
func TestRegistry_FailedOpenIsRetried(t *testing.T) {
	unavailable := errors.New("redis timeout")
	attempts := 0
	registry := devicestate.NewRegistry(func(_ context.Context, deviceID string) (string, error) {
		attempts++
		if attempts == 1 {
			return "", unavailable
		}
		return deviceID, nil
	}, time.Hour)

	_, err := registry.Get(context.Background(), "dev-a")
	assert.ErrorIs(t, err, unavailable)
	assert.Equal(t, 0, registry.Len())

	value, err := registry.Get(context.Background(), "dev-a")
	require.NoError(t, err)
	assert.Equal(t, "dev-a", value)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, registry.Len())
}
