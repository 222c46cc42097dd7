// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package permissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/apperr"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/dberr"
)

// PostgresStore implements the [Store] interface using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of [Store].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const permissionColumns = "id, name, resource, action, description, created_at"

// List returns the full catalog ordered by resource, then action.
func (store *PostgresStore) List(ctx context.Context) ([]Permission, error) {
	query := fmt.Sprintf(`SELECT %s FROM permissions ORDER BY resource, action`, permissionColumns)
	return store.queryPermissions(ctx, query)
}

// FindByID resolves a permission by primary key.
func (store *PostgresStore) FindByID(ctx context.Context, id string) (*Permission, error) {
	query := fmt.Sprintf(`SELECT %s FROM permissions WHERE id = $1`, permissionColumns)

	permission := &Permission{}
	err := store.pool.QueryRow(ctx, query, id).Scan(
		&permission.ID,
		&permission.Name,
		&permission.Resource,
		&permission.Action,
		&permission.Description,
		&permission.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Permission")
		}
		return nil, fmt.Errorf("postgres_permission_find_failed: %w", err)
	}

	return permission, nil
}

// ListByResource returns every permission for one resource.
func (store *PostgresStore) ListByResource(ctx context.Context, resource string) ([]Permission, error) {
	query := fmt.Sprintf(`SELECT %s FROM permissions WHERE resource = $1 ORDER BY action`, permissionColumns)
	return store.queryPermissions(ctx, query, resource)
}

// ListByAction returns every permission for one action across resources.
func (store *PostgresStore) ListByAction(ctx context.Context, action string) ([]Permission, error) {
	query := fmt.Sprintf(`SELECT %s FROM permissions WHERE action = $1 ORDER BY resource`, permissionColumns)
	return store.queryPermissions(ctx, query, action)
}

// Create inserts a new catalog entry. The unique index on name turns a
// concurrent duplicate into a Conflict instead of a second row.
func (store *PostgresStore) Create(ctx context.Context, permission *Permission) error {
	const query = `
		INSERT INTO permissions (id, name, resource, action, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := store.pool.Exec(ctx, query,
		permission.ID,
		permission.Name,
		permission.Resource,
		permission.Action,
		permission.Description,
		permission.CreatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Permission already exists")
		}
		return fmt.Errorf("postgres_permission_create_failed: %w", err)
	}

	return nil
}

// UpdateDescription changes the only mutable field.
func (store *PostgresStore) UpdateDescription(ctx context.Context, id, description string) error {
	const query = `UPDATE permissions SET description = $2 WHERE id = $1`

	tag, err := store.pool.Exec(ctx, query, id, description)
	if err != nil {
		return fmt.Errorf("postgres_permission_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Permission")
	}

	return nil
}

// Delete removes a catalog entry. role_permissions rows cascade.
func (store *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := store.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres_permission_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Permission")
	}
	return nil
}

// queryPermissions runs a catalog query and collects the rows.
func (store *PostgresStore) queryPermissions(ctx context.Context, query string, args ...any) ([]Permission, error) {
	rows, err := store.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_permission_list_failed: %w", err)
	}
	defer rows.Close()

	var catalog []Permission
	for rows.Next() {
		var permission Permission
		if err := rows.Scan(
			&permission.ID,
			&permission.Name,
			&permission.Resource,
			&permission.Action,
			&permission.Description,
			&permission.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_permission_scan_failed: %w", err)
		}
		catalog = append(catalog, permission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_permission_rows_failed: %w", err)
	}

	return catalog, nil
}
