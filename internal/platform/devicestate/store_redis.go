// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package devicestate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
)

// RedisKV implements [KV] with one Redis hash per device.
//
// Every write refreshes the expiry of the whole hash, so a device that stays
// away longer than ttl starts over with an empty cart and wishlist.
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisKV creates a Redis-backed device namespace.
func NewRedisKV(client *redis.Client, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, ttl: ttl}
}

func (repository *RedisKV) hashKey(deviceID string) string {
	return constants.RedisPrefixDevice + deviceID
}

/*
Get reads one field of the device hash.

Parameters:
  - context: context.Context
  - deviceID: string
  - key: string

Returns:
  - []byte: Raw value
  - bool: false when the field is absent
  - error: Connectivity errors
*/
func (repository *RedisKV) Get(context context.Context, deviceID, key string) ([]byte, bool, error) {
	value, err := repository.client.HGet(context, repository.hashKey(deviceID), key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis_device_state_get_failed: %w", err)
	}
	return value, true, nil
}

// Set writes one field and refreshes the hash expiry in a single round trip.
func (repository *RedisKV) Set(context context.Context, deviceID, key string, value []byte) error {
	hashKey := repository.hashKey(deviceID)

	_, err := repository.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.HSet(context, hashKey, key, value)
		pipe.Expire(context, hashKey, repository.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_device_state_set_failed: %w", err)
	}
	return nil
}

// Delete removes one field of the device hash.
func (repository *RedisKV) Delete(context context.Context, deviceID, key string) error {
	if err := repository.client.HDel(context, repository.hashKey(deviceID), key).Err(); err != nil {
		return fmt.Errorf("redis_device_state_delete_failed: %w", err)
	}
	return nil
}
