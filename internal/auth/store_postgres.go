// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/apperr"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/dberr"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/users"
)

// userColumns is the canonical column list for scanning a [users.User].
const userColumns = `id, email, password_hash, first_name, last_name, is_active, created_at, updated_at`

// PostgresStore implements the [Store] interface using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of [Store].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// FindByEmail resolves a user by canonical email.
func (store *PostgresStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return store.queryUser(ctx, query, email)
}

// FindByID resolves a user by id.
func (store *PostgresStore) FindByID(ctx context.Context, id string) (*users.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return store.queryUser(ctx, query, id)
}

// Create inserts a self-registered user with no role memberships.
func (store *PostgresStore) Create(ctx context.Context, user *users.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, first_name, last_name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := store.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("User already exists with this email")
		}
		return fmt.Errorf("postgres_auth_create_failed: %w", err)
	}

	return nil
}

// queryUser runs a single-row user query and maps the absent case.
func (store *PostgresStore) queryUser(ctx context.Context, query string, arg any) (*users.User, error) {
	user := &users.User{}
	err := store.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_auth_find_failed: %w", err)
	}

	return user, nil
}
