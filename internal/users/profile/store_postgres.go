// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abbassi001/souk-bazaar-hub/internal/gateway"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/database/schema"
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/dberr"
)

// PostgresTable implements [gateway.ProfileTable] on the profiles table.
type PostgresTable struct {
	pool *pgxpool.Pool
}

var _ gateway.ProfileTable = (*PostgresTable)(nil)

// NewPostgresTable creates a PostgreSQL profiles table.
func NewPostgresTable(pool *pgxpool.Pool) *PostgresTable {
	return &PostgresTable{pool: pool}
}

// FindProfile returns (nil, nil) when no row exists for id.
func (table *PostgresTable) FindProfile(ctx context.Context, id string) (*gateway.ProfileRow, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.Profiles.Columns(), ", "), schema.Profiles.Table, schema.Profiles.ID)

	row := &gateway.ProfileRow{}
	err := table.pool.QueryRow(ctx, query, id).Scan(
		&row.ID,
		&row.Email,
		&row.Name,
		&row.Role,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres_profile_find_failed: %w", err)
	}
	return row, nil
}

// InsertProfile creates a row. A duplicate id fails with gateway.CodeUniqueViolation.
func (table *PostgresTable) InsertProfile(ctx context.Context, row gateway.ProfileRow) (*gateway.ProfileRow, error) {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.Profiles.Table, strings.Join(schema.Profiles.Columns(), ", "))

	now := time.Now().UTC()
	row.CreatedAt, row.UpdatedAt = now, now

	_, err := table.pool.Exec(ctx, query, row.ID, row.Email, row.Name, row.Role, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, gateway.NewError(gateway.CodeUniqueViolation, "Profile already exists", err)
		}
		return nil, fmt.Errorf("postgres_profile_insert_failed: %w", err)
	}
	return &row, nil
}
