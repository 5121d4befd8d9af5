// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package identity

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
	"github.com/abbassi001/souk-bazaar-hub/internal/platform/sec"
)

// # Account Repository

// PostgresAccountRepository implements [AccountRepository] on identity.account.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a PostgreSQL [AccountRepository].
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

/*
Create persists a new account.

Returns:
  - error: gateway.CodeUserAlreadyRegistered on a duplicate email, storage errors otherwise
*/
func (repository *PostgresAccountRepository) Create(ctx context.Context, account *Account) error {
	columns := schema.IdentityAccount.Columns()
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schema.IdentityAccount.Table, strings.Join(columns, ", "))

	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.Name,
		string(account.Role),
		account.IsConfirmed,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return gateway.NewError(gateway.CodeUserAlreadyRegistered, "User already registered", err)
		}
		return fmt.Errorf("postgres_account_repo_create_failed: %w", err)
	}

	return nil
}

// FindByEmail looks an account up by its lower-cased email.
func (repository *PostgresAccountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE LOWER(%s) = LOWER($1)`,
		strings.Join(schema.IdentityAccount.Columns(), ", "),
		schema.IdentityAccount.Table, schema.IdentityAccount.Email)

	return repository.scanOne(ctx, "find_by_email", query, email)
}

// FindByID looks an account up by id.
func (repository *PostgresAccountRepository) FindByID(ctx context.Context, id string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.IdentityAccount.Columns(), ", "),
		schema.IdentityAccount.Table, schema.IdentityAccount.ID)

	return repository.scanOne(ctx, "find_by_id", query, id)
}

// MarkConfirmed flags the account's email as confirmed.
func (repository *PostgresAccountRepository) MarkConfirmed(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE, %s = NOW() WHERE %s = $1`,
		schema.IdentityAccount.Table,
		schema.IdentityAccount.IsConfirmed, schema.IdentityAccount.UpdatedAt,
		schema.IdentityAccount.ID)

	tag, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_mark_confirmed_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return gateway.NewError(gateway.CodeNotFound, "Account not found", nil)
	}
	return nil
}

func (repository *PostgresAccountRepository) scanOne(ctx context.Context, operation, query string, argument any) (*Account, error) {
	account := &Account{}
	var role string

	err := repository.pool.QueryRow(ctx, query, argument).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Name,
		&role,
		&account.IsConfirmed,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gateway.NewError(gateway.CodeNotFound, "Account not found", nil)
		}
		return nil, fmt.Errorf("postgres_account_repo_%s_failed: %w", operation, err)
	}

	account.Role = sec.ParseRole(role)
	return account, nil
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

// Create persists a new session.
func (repository *PostgresSessionRepository) Create(ctx context.Context, session *Session) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		schema.IdentitySession.Table, strings.Join(schema.IdentitySession.Columns(), ", "))

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	_, err := repository.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.UserAgent,
		session.IPAddress,
		session.IsRevoked,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_session_repo_create_failed: %w", err)
	}
	return nil
}

// FindByID looks a session up by id, revoked or not.
func (repository *PostgresSessionRepository) FindByID(ctx context.Context, id string) (*Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.IdentitySession.Columns(), ", "),
		schema.IdentitySession.Table, schema.IdentitySession.ID)

	return repository.scanOne(ctx, "find_by_id", query, id)
}

// FindByTokenHash looks a session up by the hash of its refresh token.
func (repository *PostgresSessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.IdentitySession.Columns(), ", "),
		schema.IdentitySession.Table, schema.IdentitySession.TokenHash)

	return repository.scanOne(ctx, "find_by_token_hash", query, tokenHash)
}

// Revoke marks a session unusable. Revoking twice is not an error.
func (repository *PostgresSessionRepository) Revoke(ctx context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE WHERE %s = $1`,
		schema.IdentitySession.Table, schema.IdentitySession.IsRevoked, schema.IdentitySession.ID)

	if _, err := repository.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("postgres_session_repo_revoke_failed: %w", err)
	}
	return nil
}

func (repository *PostgresSessionRepository) scanOne(ctx context.Context, operation, query string, argument any) (*Session, error) {
	session := &Session{}
	err := repository.pool.QueryRow(ctx, query, argument).Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.UserAgent,
		&session.IPAddress,
		&session.IsRevoked,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gateway.NewError(gateway.CodeNotFound, "Session not found", nil)
		}
		return nil, fmt.Errorf("postgres_session_repo_%s_failed: %w", operation, err)
	}
	return session, nil
}
