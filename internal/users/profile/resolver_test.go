// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package profile_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbassi001/souk-bazaar-hub/internal/gateway"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/profile"
)

// # Fakes

type memoryTable struct {
	mu          sync.Mutex
	rows        map[string]gateway.ProfileRow
	inserts     atomic.Int32
	onMissing   func()
	findErr     error
	insertErr   error
	blockOnFind bool
}

func newMemoryTable() *memoryTable {
	return &memoryTable{rows: map[string]gateway.ProfileRow{}}
}

func (m *memoryTable) FindProfile(ctx context.Context, id string) (*gateway.ProfileRow, error) {
	if m.blockOnFind {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.findErr != nil {
		return nil, m.findErr
	}

	m.mu.Lock()
	row, ok := m.rows[id]
	m.mu.Unlock()

	if !ok {
		if m.onMissing != nil {
			m.onMissing()
		}
		return nil, nil
	}
	return &row, nil
}

func (m *memoryTable) InsertProfile(_ context.Context, row gateway.ProfileRow) (*gateway.ProfileRow, error) {
	m.inserts.Add(1)
	if m.insertErr != nil {
		return nil, m.insertErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rows[row.ID]; exists {
		return nil, gateway.NewError(gateway.CodeUniqueViolation, "Profile already exists", nil)
	}
	m.rows[row.ID] = row
	return &row, nil
}

func (m *memoryTable) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type stubAuth struct {
	user  *gateway.AuthUser
	err   error
	calls atomic.Int32
}

func (s *stubAuth) GetUser(context.Context, string) (*gateway.AuthUser, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func sellerAuth() *stubAuth {
	return &stubAuth{user: &gateway.AuthUser{
		ID:       "u-1",
		Email:    "karim@example.ma",
		Metadata: gateway.UserMetadata{Name: "Karim", Role: "seller"},
	}}
}

// # Tests

func TestResolve_ExistingRow(t *testing.T) {
	table := newMemoryTable()
	table.rows["u-1"] = gateway.ProfileRow{ID: "u-1", Email: "karim@example.ma", Name: "Karim", Role: "Seller "}
	auth := sellerAuth()

	user, err := profile.NewResolver(table, auth, time.Second).Resolve(context.Background(), "u-1")
	require.NoError(t, err)

	assert.Equal(t, &profile.User{ID: "u-1", Email: "karim@example.ma", Role: sec.RoleSeller, Name: "Karim"}, user)
	assert.Zero(t, auth.calls.Load())
	assert.Zero(t, table.inserts.Load())
}

func TestResolve_UnknownStoredRoleFailsClosed(t *testing.T) {
	table := newMemoryTable()
	table.rows["u-1"] = gateway.ProfileRow{ID: "u-1", Role: "admin"}

	user, err := profile.NewResolver(table, sellerAuth(), time.Second).Resolve(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleBuyer, user.Role)
}

func TestResolve_ProvisionsFromMetadata(t *testing.T) {
	table := newMemoryTable()

	user, err := profile.NewResolver(table, sellerAuth(), time.Second).Resolve(context.Background(), "u-1")
	require.NoError(t, err)

	assert.Equal(t, sec.RoleSeller, user.Role)
	assert.Equal(t, "Karim", user.Name)
	assert.Equal(t, 1, table.count())
}

func TestResolve_ProvisionDefaults(t *testing.T) {
	table := newMemoryTable()
	auth := &stubAuth{user: &gateway.AuthUser{ID: "u-2", Email: "new@example.ma"}}

	user, err := profile.NewResolver(table, auth, time.Second).Resolve(context.Background(), "u-2")
	require.NoError(t, err)

	assert.Equal(t, sec.RoleBuyer, user.Role)
	assert.Equal(t, profile.DefaultName, user.Name)
	assert.Equal(t, "buyer", table.rows["u-2"].Role)
}

func TestResolve_ConcurrentCallsCreateOneRow(t *testing.T) {
	table := newMemoryTable()
	resolver := profile.NewResolver(table, sellerAuth(), time.Second)

	const callers = 8
	results := make([]*profile.User, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user, err := resolver.Resolve(context.Background(), "u-1")
			assert.NoError(t, err)
			results[i] = user
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, table.count())
	for _, user := range results {
		assert.Equal(t, results[0], user)
	}
}

func TestResolve_RacingProcessesReFetchOnUniqueViolation(t *testing.T) {
	table := newMemoryTable()

	// Both resolvers observe the missing row before either inserts.
	var barrier sync.WaitGroup
	barrier.Add(2)
	table.onMissing = func() {
		barrier.Done()
		barrier.Wait()
	}

	first := profile.NewResolver(table, sellerAuth(), time.Second)
	second := profile.NewResolver(table, sellerAuth(), time.Second)

	var wg sync.WaitGroup
	var a, b *profile.User
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		a, err = first.Resolve(context.Background(), "u-1")
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		var err error
		b, err = second.Resolve(context.Background(), "u-1")
		assert.NoError(t, err)
	}()
	wg.Wait()

	assert.Equal(t, 1, table.count())
	assert.Equal(t, int32(2), table.inserts.Load())
	assert.Equal(t, a, b)
}

func TestResolve_InsertFailure(t *testing.T) {
	table := newMemoryTable()
	table.insertErr = errors.New("permission denied for table profiles")

	user, err := profile.NewResolver(table, sellerAuth(), time.Second).Resolve(context.Background(), "u-1")

	assert.Nil(t, user)
	assert.Equal(t, profile.CodeProvisionFailed, apperr.Code(err))
	assert.Equal(t, int32(1), table.inserts.Load())
}

func TestResolve_FetchFailure(t *testing.T) {
	table := newMemoryTable()
	table.findErr = errors.New("connection refused")

	user, err := profile.NewResolver(table, sellerAuth(), time.Second).Resolve(context.Background(), "u-1")

	assert.Nil(t, user)
	assert.Equal(t, profile.CodeBackendUnavailable, apperr.Code(err))
}

func TestResolve_TimeoutIsBackendFailure(t *testing.T) {
	table := newMemoryTable()
	table.blockOnFind = true

	user, err := profile.NewResolver(table, sellerAuth(), 20*time.Millisecond).Resolve(context.Background(), "u-1")

	assert.Nil(t, user)
	assert.Equal(t, profile.CodeBackendUnavailable, apperr.Code(err))
}

func TestResolve_EmptySubject(t *testing.T) {
	_, err := profile.NewResolver(newMemoryTable(), sellerAuth(), time.Second).Resolve(context.Background(), "  ")
	assert.Equal(t, apperr.CodeValidation, apperr.Code(err))
}
