// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package identity is the storefront's own authentication backend.

It implements [gateway.AuthService]: accounts with bcrypt password hashes,
refresh-token sessions in PostgreSQL, RS256 access tokens and email
confirmation tokens in Redis.

Architecture:

  - Service: registration, sign-in, sign-out, refresh, confirmation.
  - Repository: Postgres (accounts, sessions) and Redis (confirmation tokens).
  - Every failure leaves the package as a [*gateway.Error].
*/
package identity

import (
	"time"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
)

// # Constraints

const (
	// AccessTokenTTL is the lifetime of a signed access token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the lifetime of a session.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenLength is the byte length of the random refresh token.
	RefreshTokenLength = 32

	// ConfirmTokenTTL is how long a confirmation link stays valid.
	ConfirmTokenTTL = 24 * time.Hour

	// ConfirmTokenLength is the byte length of the random confirmation token.
	ConfirmTokenLength = 32

	// ConfirmTokenQuery is the query parameter carrying the token in the mailed link.
	ConfirmTokenQuery = "confirm_token"
)

// # Domain Entities

// Account is a registered identity.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         sec.UserRole
	IsConfirmed  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is a refresh-token session. Access tokens carry its id as jti.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	UserAgent string
	IPAddress string
	ExpiresAt time.Time
	IsRevoked bool
	CreatedAt time.Time
}

// Active reports whether the session can still be used at now.
func (s *Session) Active(now time.Time) bool {
	return !s.IsRevoked && now.Before(s.ExpiresAt)
}
