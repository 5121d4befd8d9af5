// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package identity

import (
	"context"
	"time"
)

// AccountRepository persists accounts.
type AccountRepository interface {
	// Create fails with gateway.CodeUserAlreadyRegistered on a duplicate email.
	Create(ctx context.Context, account *Account) error

	// FindByEmail matches case-insensitively. Fails with gateway.CodeNotFound.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// FindByID fails with gateway.CodeNotFound.
	FindByID(ctx context.Context, id string) (*Account, error)

	MarkConfirmed(ctx context.Context, id string) error
}

// SessionRepository persists refresh-token sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error

	// FindByID fails with gateway.CodeNotFound.
	FindByID(ctx context.Context, id string) (*Session, error)

	// FindByTokenHash fails with gateway.CodeNotFound.
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	Revoke(ctx context.Context, id string) error
}

// ConfirmTokenRepository holds single-use email confirmation tokens.
type ConfirmTokenRepository interface {
	Set(ctx context.Context, token, userID string, ttl time.Duration) error

	// Get fails with gateway.CodeInvalidToken when the token is unknown or expired.
	Get(ctx context.Context, token string) (string, error)

	Delete(ctx context.Context, token string) error
}
