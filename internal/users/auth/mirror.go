// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

/*
Package auth implements the storefront's authentication flow.

It owns sign-up, sign-in, sign-out, session restore and refresh, translates
gateway error codes into the user-facing taxonomy, emits a notification for
every outcome and decides where the browser goes next.

Architecture:

  - Mirror: the per-device read-only copy of the gateway session and the
    resolved user. Only this package writes it.
  - Controller: the operations, each guarded against duplicate submission.
  - Handler: the HTTP delivery layer and its session cookies.
  - RestoreSession: middleware that brings the mirror in line with the token
    the device presents.
*/
package auth

import (
	"context"
	"sync"
	"time"

	"github.com/abbassi001/souk-bazaar-hub/internal/gateway"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxkey"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/profile"
)

// Operation names a controller operation for the duplicate submission guard.
type Operation string

const (
	OpSignUp  Operation = "sign_up"
	OpSignIn  Operation = "sign_in"
	OpSignOut Operation = "sign_out"
	OpRefresh Operation = "refresh"
)

// Mirror is a device's copy of its session and user.
type Mirror struct {
	deviceID string

	mu         sync.RWMutex
	user       *profile.User
	session    *gateway.Session
	loading    bool
	submitting map[Operation]bool
}

// NewMirror creates the empty mirror of deviceID.
func NewMirror(deviceID string) *Mirror {
	return &Mirror{deviceID: deviceID, submitting: make(map[Operation]bool)}
}

// Snapshot is a consistent read of a [Mirror].
type Snapshot struct {
	User    *profile.User
	Session *gateway.Session
	Loading bool
}

// DeviceID returns the device this mirror belongs to.
func (m *Mirror) DeviceID() string { return m.deviceID }

// Snapshot returns copies of the current user and session.
func (m *Mirror) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := Snapshot{Loading: m.loading}
	if m.user != nil {
		user := *m.user
		snapshot.User = &user
	}
	if m.session != nil {
		session := *m.session
		snapshot.Session = &session
	}
	return snapshot
}

// User returns a copy of the current user, or nil.
func (m *Mirror) User() *profile.User {
	return m.Snapshot().User
}

// Loading reports whether a session restore is in flight.
func (m *Mirror) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// staleFor reports whether the mirror must be re-synchronised for token.
func (m *Mirror) staleFor(token string, now time.Time) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session == nil {
		return true
	}
	if m.session.AccessToken != token {
		return true
	}
	return !m.session.ExpiresAt.IsZero() && !now.Before(m.session.ExpiresAt)
}

func (m *Mirror) hasSession() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session != nil
}

func (m *Mirror) adopt(user *profile.User, session *gateway.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = user
	m.session = session
}

// replaceUser swaps the mirrored profile, keeping the session. A signed-out
// mirror stays signed out.
func (m *Mirror) replaceUser(user *profile.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		m.user = user
	}
}

func (m *Mirror) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	m.session = nil
}

func (m *Mirror) setLoading(loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = loading
}

// begin takes the submitting flag of op. The returned release must be called
// on every exit path; ok is false when op is already in flight.
func (m *Mirror) begin(op Operation) (release func(), ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitting[op] {
		return nil, false
	}
	m.submitting[op] = true

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.submitting, op)
	}, true
}

// Submitting reports whether op is in flight.
func (m *Mirror) Submitting(op Operation) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.submitting[op]
}

// # Context

// WithMirror stores the device's mirror in ctx.
func WithMirror(ctx context.Context, mirror *Mirror) context.Context {
	return context.WithValue(ctx, ctxkey.KeyMirror, mirror)
}

// MirrorFrom returns the mirror stored by [RestoreSession], or nil.
func MirrorFrom(ctx context.Context) *Mirror {
	mirror, _ := ctx.Value(ctxkey.KeyMirror).(*Mirror)
	return mirror
}

// CurrentUser returns the signed-in user of the request, or nil.
func CurrentUser(ctx context.Context) *profile.User {
	if mirror := MirrorFrom(ctx); mirror != nil {
		return mirror.User()
	}
	return nil
}
