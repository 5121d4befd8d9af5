// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abbassi001/souk-bazaar-hub/internal/gateway"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/constants"
)

// RedisConfirmTokenRepository implements [ConfirmTokenRepository] using Redis.
type RedisConfirmTokenRepository struct {
	client *redis.Client
}

// NewConfirmTokenRepository creates a Redis-backed [ConfirmTokenRepository].
func NewConfirmTokenRepository(client *redis.Client) *RedisConfirmTokenRepository {
	return &RedisConfirmTokenRepository{client: client}
}

func confirmTokenKey(token string) string {
	return constants.RedisPrefixConfirmToken + token
}

// Set stores token for userID with a TTL.
func (repository *RedisConfirmTokenRepository) Set(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := repository.client.Set(ctx, confirmTokenKey(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_confirm_token_set_failed: %w", err)
	}
	return nil
}

// Get returns the user id token was issued for.
func (repository *RedisConfirmTokenRepository) Get(ctx context.Context, token string) (string, error) {
	userID, err := repository.client.Get(ctx, confirmTokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", gateway.NewError(gateway.CodeInvalidToken, "Confirmation link is invalid or expired", nil)
		}
		return "", fmt.Errorf("redis_confirm_token_get_failed: %w", err)
	}
	return userID, nil
}

// Delete consumes token.
func (repository *RedisConfirmTokenRepository) Delete(ctx context.Context, token string) error {
	if err := repository.client.Del(ctx, confirmTokenKey(token)).Err(); err != nil {
		return fmt.Errorf("redis_confirm_token_delete_failed: %w", err)
	}
	return nil
}
