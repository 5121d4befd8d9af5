// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package profile

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/abbassi001/souk-bazaar-hub/internal/gateway"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/ctxutil"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
)

// AuthLookup reads the auth record of a subject.
type AuthLookup interface {
	GetUser(ctx context.Context, userID string) (*gateway.AuthUser, error)
}

// Resolver implements the profile get-or-create.
type Resolver struct {
	table   gateway.ProfileTable
	auth    AuthLookup
	timeout time.Duration
	group   singleflight.Group
}

// NewResolver creates a [Resolver]. Every gateway call is bounded by timeout.
func NewResolver(table gateway.ProfileTable, auth AuthLookup, timeout time.Duration) *Resolver {
	return &Resolver{table: table, auth: auth, timeout: timeout}
}

/*
Resolve returns the domain user of subjectID, provisioning its profile row on
first sight.

Concurrent calls for one subject share a single lookup. A unique violation on
insert means another process created the row first; it is re-read.

Returns:
  - *User: never nil when err is nil
  - error: VALIDATION_ERROR, PROFILE_PROVISION_FAILED or BACKEND_UNAVAILABLE
*/
func (resolver *Resolver) Resolve(ctx context.Context, subjectID string) (*User, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, apperr.ValidationError("Subject id is required")
	}

	// One caller leaving must not cancel the flight the others wait on.
	shared := context.WithoutCancel(ctx)

	result, err, _ := resolver.group.Do(subjectID, func() (any, error) {
		return resolver.getOrCreate(shared, subjectID)
	})
	if err != nil {
		return nil, err
	}

	user := *result.(*User)
	return &user, nil
}

func (resolver *Resolver) getOrCreate(ctx context.Context, subjectID string) (*User, error) {
	logger := ctxutil.GetLogger(ctx)

	row, err := resolver.find(ctx, subjectID)
	if err != nil {
		logger.ErrorContext(ctx, "profile_fetch_failed", slog.String("user_id", subjectID), slog.Any("error", err))
		return nil, BackendUnavailable(err)
	}
	if row != nil {
		return fromRow(row), nil
	}

	authUser, err := resolver.getUser(ctx, subjectID)
	if err != nil {
		logger.ErrorContext(ctx, "profile_auth_lookup_failed", slog.String("user_id", subjectID), slog.Any("error", err))
		return nil, BackendUnavailable(err)
	}

	candidate := gateway.ProfileRow{
		ID:    subjectID,
		Email: authUser.Email,
		Name:  strings.TrimSpace(authUser.Metadata.Name),
		Role:  string(sec.ParseRole(authUser.Metadata.Role)),
	}
	if candidate.Name == "" {
		candidate.Name = DefaultName
	}

	inserted, err := resolver.insert(ctx, candidate)
	if err == nil {
		logger.InfoContext(ctx, "profile_provisioned", slog.String("user_id", subjectID), slog.String("role", candidate.Role))
		if inserted == nil {
			inserted = &candidate
		}
		return fromRow(inserted), nil
	}

	if gateway.IsCode(err, gateway.CodeUniqueViolation) {
		existing, findErr := resolver.find(ctx, subjectID)
		if findErr == nil && existing != nil {
			return fromRow(existing), nil
		}
		logger.ErrorContext(ctx, "profile_refetch_failed", slog.String("user_id", subjectID), slog.Any("error", findErr))
		return nil, BackendUnavailable(findErr)
	}

	logger.ErrorContext(ctx, "profile_provision_failed", slog.String("user_id", subjectID), slog.Any("error", err))
	if gateway.IsCode(err, gateway.CodeUnavailable) {
		return nil, BackendUnavailable(err)
	}
	return nil, ProvisionFailed(err)
}

func (resolver *Resolver) find(ctx context.Context, subjectID string) (*gateway.ProfileRow, error) {
	callCtx, cancel := context.WithTimeout(ctx, resolver.timeout)
	defer cancel()
	return resolver.table.FindProfile(callCtx, subjectID)
}

func (resolver *Resolver) getUser(ctx context.Context, subjectID string) (*gateway.AuthUser, error) {
	callCtx, cancel := context.WithTimeout(ctx, resolver.timeout)
	defer cancel()
	return resolver.auth.GetUser(callCtx, subjectID)
}

func (resolver *Resolver) insert(ctx context.Context, row gateway.ProfileRow) (*gateway.ProfileRow, error) {
	callCtx, cancel := context.WithTimeout(ctx, resolver.timeout)
	defer cancel()
	return resolver.table.InsertProfile(callCtx, row)
}
