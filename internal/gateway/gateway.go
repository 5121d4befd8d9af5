// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package gateway is the contract between the storefront and its remote data
backend: authentication, the profiles table and object storage.

Architecture:

  - Ports only. Implementations live in users/identity (auth), users/profile
    (profiles table) and platform/objectstore (images).
  - Every failure crosses this boundary as an [*Error] with a stable [Code].
*/
package gateway

import (
	"context"
	"io"
	"time"
)

// # Authentication

// UserMetadata is the registration metadata stored with an auth user.
type UserMetadata struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// AuthUser is the identity record held by the auth service.
type AuthUser struct {
	ID             string
	Email          string
	Metadata       UserMetadata
	EmailConfirmed bool
	CreatedAt      time.Time
}

// Session is an authenticated session issued by the auth service.
type Session struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SignUpRequest carries a registration.
type SignUpRequest struct {
	Email    string
	Password string
	Metadata UserMetadata
	// RedirectTo is where the confirmation link sends the user back to.
	RedirectTo string
}

// AuthService is the remote authentication backend.
type AuthService interface {
	// SignUp registers an unconfirmed account and sends the confirmation mail.
	SignUp(ctx context.Context, req SignUpRequest) (*AuthUser, error)

	// SignInWithPassword opens a session for a confirmed account.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// SignOut revokes the session identified by accessToken.
	SignOut(ctx context.Context, accessToken string) error

	// GetUser returns the auth record of userID.
	GetUser(ctx context.Context, userID string) (*AuthUser, error)

	// VerifyAccessToken checks accessToken and returns the session it belongs to.
	VerifyAccessToken(ctx context.Context, accessToken string) (*Session, error)

	// Refresh rotates refreshToken into a new session.
	Refresh(ctx context.Context, refreshToken string) (*Session, error)

	// ConfirmEmail consumes a confirmation token.
	ConfirmEmail(ctx context.Context, token string) error
}

// # Profiles

// ProfileRow is a row of the profiles table.
type ProfileRow struct {
	ID        string
	Email     string
	Name      string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileTable is the remote profiles table.
type ProfileTable interface {
	// FindProfile returns (nil, nil) when no row exists for id.
	FindProfile(ctx context.Context, id string) (*ProfileRow, error)

	// InsertProfile fails with CodeUniqueViolation when id already exists.
	InsertProfile(ctx context.Context, row ProfileRow) (*ProfileRow, error)
}

// # Object Storage

// ObjectStore holds public product images.
type ObjectStore interface {
	// Upload writes body at path and returns its public URL.
	Upload(ctx context.Context, path, contentType string, body io.Reader) (string, error)
}
