// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/apperr"
)

// # Postgres Store

// PostgresStore implements the [Store] interface using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of [Store].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
FindIdentity loads the identity projection of a user row.

Parameters:
  - ctx: context.Context
  - userID: string (UUIDv7)

Returns:
  - *Identity: id, email, and active flag
  - error: apperr.NotFound or execution errors
*/
func (store *PostgresStore) FindIdentity(ctx context.Context, userID string) (*Identity, error) {
	const query = `
		SELECT id, email, is_active
		FROM users
		WHERE id = $1`

	identity := &Identity{}
	err := store.pool.QueryRow(ctx, query, userID).Scan(
		&identity.ID,
		&identity.Email,
		&identity.IsActive,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_authz_find_identity_failed: %w", err)
	}

	return identity, nil
}

/*
RoleNames lists the names of every role assigned to the user.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - []string: role names (already distinct via the join key)
  - error: execution errors
*/
func (store *PostgresStore) RoleNames(ctx context.Context, userID string) ([]string, error) {
	const query = `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.name`

	return store.queryNames(ctx, query, userID, "postgres_authz_role_names_failed")
}

/*
PermissionNames lists the distinct permission names the user holds through
any of their roles.

Description: Flattens the UserRole → RolePermission → Permission chain with
a single DISTINCT join, so a permission shared by two roles appears once.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - []string: distinct permission names
  - error: execution errors
*/
func (store *PostgresStore) PermissionNames(ctx context.Context, userID string) ([]string, error) {
	const query = `
		SELECT DISTINCT p.name
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = $1
		ORDER BY p.name`

	return store.queryNames(ctx, query, userID, "postgres_authz_permission_names_failed")
}

// queryNames runs a single-column name query and collects the rows.
func (store *PostgresStore) queryNames(ctx context.Context, query, userID, wrap string) ([]string, error) {
	rows, err := store.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", wrap, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%s: %w", wrap, err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", wrap, err)
	}

	return names, nil
}
