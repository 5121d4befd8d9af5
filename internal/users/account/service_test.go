// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package account_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/notify"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/account"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/auth"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/profile"
)

const (
	userID   = "0192f1c4-9999-7a35-9d3c-6a1f0b2e4c11"
	deviceID = "0192f1c4-7b7e-7a35-9d3c-6a1f0b2e4c11"
	current  = "0192f1c4-0001-7a35-9d3c-6a1f0b2e4c11"
	laptop   = "0192f1c4-0002-7a35-9d3c-6a1f0b2e4c11"
	phone    = "0192f1c4-0003-7a35-9d3c-6a1f0b2e4c11"
)

// # Fakes

type memoryProfiles struct {
	users map[string]*profile.User
	err   error
}

func (m *memoryProfiles) UpdateName(_ context.Context, id, name string) (*profile.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("Profile")
	}
	user.Name = name
	copied := *user
	return &copied, nil
}

type memorySessions struct {
	sessions []account.Session
	revoked  map[string]bool
}

func (m *memorySessions) ListActive(context.Context, string, time.Time) ([]account.Session, error) {
	active := make([]account.Session, 0)
	for _, session := range m.sessions {
		if !m.revoked[session.ID] {
			active = append(active, session)
		}
	}
	return active, nil
}

func (m *memorySessions) Revoke(_ context.Context, _, sessionID string) (bool, error) {
	for _, session := range m.sessions {
		if session.ID == sessionID && !m.revoked[sessionID] {
			m.revoked[sessionID] = true
			return true, nil
		}
	}
	return false, nil
}

func (m *memorySessions) RevokeOthers(_ context.Context, _, keepID string) (int64, error) {
	var closed int64
	for _, session := range m.sessions {
		if session.ID != keepID && !m.revoked[session.ID] {
			m.revoked[session.ID] = true
			closed++
		}
	}
	return closed, nil
}

type recordingRefresher struct {
	updated []*profile.User
}

func (r *recordingRefresher) ProfileUpdated(_ context.Context, _ *auth.Mirror, user *profile.User) {
	r.updated = append(r.updated, user)
}

// # Fixture

type fixture struct {
	service   *account.Service
	profiles  *memoryProfiles
	sessions  *memorySessions
	refresher *recordingRefresher
}

func newFixture() *fixture {
	profiles := &memoryProfiles{users: map[string]*profile.User{
		userID: {ID: userID, Email: "salma@example.ma", Role: sec.RoleBuyer, Name: "Salma"},
	}}
	sessions := &memorySessions{
		sessions: []account.Session{
			{ID: current, UserAgent: "Firefox"},
			{ID: laptop, UserAgent: "Chrome"},
			{ID: phone, UserAgent: "Safari"},
		},
		revoked: map[string]bool{},
	}
	refresher := &recordingRefresher{}

	return &fixture{
		service:   account.NewService(profiles, sessions, refresher, nil),
		profiles:  profiles,
		sessions:  sessions,
		refresher: refresher,
	}
}

// # Profile

func TestUpdateName(t *testing.T) {
	f := newFixture()
	ctx, collector := notify.WithCollector(context.Background())

	user, err := f.service.UpdateName(ctx, userID, auth.NewMirror(deviceID), "  Salma Bennani ")
	require.NoError(t, err)

	assert.Equal(t, "Salma Bennani", user.Name)
	require.Len(t, f.refresher.updated, 1)
	assert.Equal(t, "Salma Bennani", f.refresher.updated[0].Name)
	assert.Equal(t, []notify.Notification{
		notify.Success("Profil mis à jour", "Vos informations ont été enregistrées."),
	}, collector.All())
}

func TestUpdateName_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"blank", "   "},
		{"too long", strings.Repeat("a", account.NameMaxLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ctx, collector := notify.WithCollector(context.Background())

			_, err := f.service.UpdateName(ctx, userID, auth.NewMirror(deviceID), tt.input)

			assert.Equal(t, apperr.CodeValidation, apperr.Code(err))
			assert.Empty(t, f.refresher.updated)
			require.Len(t, collector.All(), 1)
			assert.Equal(t, notify.CategoryError, collector.All()[0].Category)
		})
	}
}

func TestUpdateName_StorageFailure(t *testing.T) {
	f := newFixture()
	f.profiles.err = errors.New("connection reset")

	_, err := f.service.UpdateName(context.Background(), userID, auth.NewMirror(deviceID), "Salma B.")

	require.Error(t, err)
	assert.Empty(t, f.refresher.updated)
}

// # Sessions

func TestListSessions_FlagsCurrent(t *testing.T) {
	f := newFixture()

	sessions, err := f.service.ListSessions(context.Background(), userID, current)
	require.NoError(t, err)

	require.Len(t, sessions, 3)
	assert.True(t, sessions[0].IsCurrent)
	assert.False(t, sessions[1].IsCurrent)
	assert.False(t, sessions[2].IsCurrent)
}

func TestRevokeSession(t *testing.T) {
	f := newFixture()
	ctx, collector := notify.WithCollector(context.Background())

	require.NoError(t, f.service.RevokeSession(ctx, userID, laptop, current))

	assert.True(t, f.sessions.revoked[laptop])
	require.Len(t, collector.All(), 1)
	assert.Equal(t, notify.CategorySuccess, collector.All()[0].Category)
}

func TestRevokeSession_CurrentRejected(t *testing.T) {
	f := newFixture()

	err := f.service.RevokeSession(context.Background(), userID, current, current)

	assert.Equal(t, apperr.CodeValidation, apperr.Code(err))
	assert.False(t, f.sessions.revoked[current])
}

func TestRevokeSession_Unknown(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.service.RevokeSession(context.Background(), userID, laptop, current))

	err := f.service.RevokeSession(context.Background(), userID, laptop, current)

	assert.Equal(t, apperr.CodeNotFound, apperr.Code(err))
}

func TestRevokeOtherSessions(t *testing.T) {
	f := newFixture()

	closed, err := f.service.RevokeOtherSessions(context.Background(), userID, current)
	require.NoError(t, err)

	assert.Equal(t, int64(2), closed)
	sessions, err := f.service.ListSessions(context.Background(), userID, current)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].IsCurrent)
}
