// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abbassi001/souk-bazaar-hub/internal/platform/apperr"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/database/schema"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
	"github.com/abbassi001/souk-bazaar-hub/internal/users/profile"
)

// # Profile Repository

// PostgresProfileRepository implements [ProfileRepository] on the profiles table.
type PostgresProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a PostgreSQL [ProfileRepository].
func NewProfileRepository(pool *pgxpool.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

// UpdateName sets the name and bumps updated_at.
func (repository *PostgresProfileRepository) UpdateName(ctx context.Context, id, name string) (*profile.User, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1 RETURNING %s, %s, %s, %s`,
		schema.Profiles.Table,
		schema.Profiles.Name, schema.Profiles.UpdatedAt,
		schema.Profiles.ID,
		schema.Profiles.ID, schema.Profiles.Email, schema.Profiles.Role, schema.Profiles.Name,
	)

	var (
		user profile.User
		role string
	)
	err := repository.pool.QueryRow(ctx, query, id, name, time.Now().UTC()).Scan(&user.ID, &user.Email, &role, &user.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Profile")
		}
		return nil, fmt.Errorf("postgres_account_update_name_failed: %w", err)
	}

	user.Role = sec.ParseRole(role)
	return &user, nil
}

// # Session Repository

// PostgresSessionRepository implements [SessionRepository] on identity.session.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a PostgreSQL [SessionRepository].
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// ListActive returns the sessions of userID that can still refresh.
func (repository *PostgresSessionRepository) ListActive(ctx context.Context, userID string, now time.Time) ([]Session, error) {
	columns := []string{
		schema.IdentitySession.ID,
		schema.IdentitySession.UserAgent,
		schema.IdentitySession.IPAddress,
		schema.IdentitySession.CreatedAt,
		schema.IdentitySession.ExpiresAt,
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, `SELECT %s FROM %s WHERE %s = $1 AND %s = FALSE AND %s > $2 ORDER BY %s DESC`,
		strings.Join(columns, ", "),
		schema.IdentitySession.Table,
		schema.IdentitySession.UserID,
		schema.IdentitySession.IsRevoked,
		schema.IdentitySession.ExpiresAt,
		schema.IdentitySession.CreatedAt,
	)

	rows, err := repository.pool.Query(ctx, builder.String(), userID, now)
	if err != nil {
		return nil, fmt.Errorf("postgres_account_list_sessions_failed: %w", err)
	}
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		var session Session
		if err := rows.Scan(&session.ID, &session.UserAgent, &session.IPAddress, &session.CreatedAt, &session.ExpiresAt); err != nil {
			return nil, fmt.Errorf("postgres_account_scan_session_failed: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_account_list_sessions_failed: %w", err)
	}

	return sessions, nil
}

// Revoke closes one unrevoked session of userID.
func (repository *PostgresSessionRepository) Revoke(ctx context.Context, userID, sessionID string) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = $2 AND %s = FALSE`,
		schema.IdentitySession.Table,
		schema.IdentitySession.IsRevoked,
		schema.IdentitySession.ID,
		schema.IdentitySession.UserID,
		schema.IdentitySession.IsRevoked,
	)

	tag, err := repository.pool.Exec(ctx, query, sessionID, userID)
	if err != nil {
		return false, fmt.Errorf("postgres_account_revoke_session_failed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// RevokeOthers closes every unrevoked session of userID except keepID.
func (repository *PostgresSessionRepository) RevokeOthers(ctx context.Context, userID, keepID string) (int64, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s <> $2 AND %s = FALSE`,
		schema.IdentitySession.Table,
		schema.IdentitySession.IsRevoked,
		schema.IdentitySession.UserID,
		schema.IdentitySession.ID,
		schema.IdentitySession.IsRevoked,
	)

	tag, err := repository.pool.Exec(ctx, query, userID, keepID)
	if err != nil {
		return 0, fmt.Errorf("postgres_account_revoke_others_failed: %w", err)
	}
	return tag.RowsAffected(), nil
}
