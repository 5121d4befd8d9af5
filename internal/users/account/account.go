// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package account implements the settings tab of the account page.

A signed-in user can edit the name shown across the storefront and review the
sessions opened with their credentials, closing any of them.

# Architecture

  - Entities: SessionInfo (DTO).
  - Domain: the profile itself belongs to the profile package; this package
    only edits its mutable fields.
  - Security: the current session is read from the verified token and can
    only be closed through sign-out.
*/
package account

import (
	"context"
	"time"

	"github.com/abbassi001/souk-bazaar-hub/internal/users/auth"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/profile"
)

// NameMaxLength caps the display name.
const NameMaxLength = 100

// # Domain Entities

// Session is a stored refresh-token session as this package sees it.
type Session struct {
	ID        string
	UserAgent string
	IPAddress string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionInfo is the transport view of a session. Token hashes never leave
// the server.
type SessionInfo struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsCurrent bool      `json:"is_current"`
}

// # Repository Contracts

// ProfileRepository edits the profiles table.
type ProfileRepository interface {
	// UpdateName sets the name of profile id and returns the updated profile.
	// Fails with apperr.NotFound when the row is missing.
	UpdateName(ctx context.Context, id, name string) (*profile.User, error)
}

// SessionRepository reads and revokes the sessions of one user.
type SessionRepository interface {
	// ListActive returns the unrevoked, unexpired sessions of userID, newest first.
	ListActive(ctx context.Context, userID string, now time.Time) ([]Session, error)

	// Revoke closes one session of userID. It reports false when no active
	// session of that user has the id.
	Revoke(ctx context.Context, userID, sessionID string) (bool, error)

	// RevokeOthers closes every session of userID except keepID and returns
	// how many were closed.
	RevokeOthers(ctx context.Context, userID, keepID string) (int64, error)
}

// MirrorRefresher updates the device's signed-in state after a profile edit.
type MirrorRefresher interface {
	ProfileUpdated(ctx context.Context, mirror *auth.Mirror, user *profile.User)
}
