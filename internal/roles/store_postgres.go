// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package roles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/permissions"
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

// List returns all roles without their grants, newest first.
func (store *PostgresStore) List(ctx context.Context) ([]Role, error) {
	const query = `
		SELECT id, name, description, is_active, created_at, updated_at
		FROM roles
		ORDER BY created_at DESC`

	rows, err := store.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_role_list_failed: %w", err)
	}
	defer rows.Close()

	var result []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(
			&role.ID,
			&role.Name,
			&role.Description,
			&role.IsActive,
			&role.CreatedAt,
			&role.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_role_scan_failed: %w", err)
		}
		result = append(result, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_role_rows_failed: %w", err)
	}

	return result, nil
}

// FindByID resolves a role and eagerly loads its granted permissions.
func (store *PostgresStore) FindByID(ctx context.Context, id string) (*Role, error) {
	const query = `
		SELECT id, name, description, is_active, created_at, updated_at
		FROM roles
		WHERE id = $1`

	role := &Role{}
	err := store.pool.QueryRow(ctx, query, id).Scan(
		&role.ID,
		&role.Name,
		&role.Description,
		&role.IsActive,
		&role.CreatedAt,
		&role.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Role")
		}
		return nil, fmt.Errorf("postgres_role_find_failed: %w", err)
	}

	grants, err := store.ListGrants(ctx, id)
	if err != nil {
		return nil, err
	}
	role.Permissions = grants

	return role, nil
}

/*
Create inserts a role and, atomically, its initial grants.

Description: Runs in one transaction so a role is never visible without
the grants it was created with. The unique index on the canonical name
turns concurrent duplicate creates into Conflict; an unknown permission id
surfaces the foreign-key violation as NotFound.
*/
func (store *PostgresStore) Create(ctx context.Context, role *Role, permissionIDs []string) error {
	tx, err := store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_role_create_begin_failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertRole = `
		INSERT INTO roles (id, name, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = tx.Exec(ctx, insertRole,
		role.ID,
		role.Name,
		role.Description,
		role.IsActive,
		role.CreatedAt,
		role.UpdatedAt,
	)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Role already exists with this name")
		}
		return fmt.Errorf("postgres_role_create_failed: %w", err)
	}

	const insertGrant = `
		INSERT INTO role_permissions (role_id, permission_id, granted_at)
		VALUES ($1, $2, $3)`

	for _, permissionID := range permissionIDs {
		if _, err := tx.Exec(ctx, insertGrant, role.ID, permissionID, time.Now()); err != nil {
			if dberr.IsForeignKeyViolation(err) {
				return apperr.NotFound("Permission")
			}
			if dberr.IsUniqueViolation(err) {
				return apperr.Conflict("Role already has this permission")
			}
			return fmt.Errorf("postgres_role_grant_failed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_role_create_commit_failed: %w", err)
	}

	return nil
}

// Update applies a partial update using a dynamic SET list.
func (store *PostgresStore) Update(ctx context.Context, id string, fields UpdateFields) error {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	idx := 2

	if fields.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", idx))
		args = append(args, *fields.Name)
		idx++
	}
	if fields.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", idx))
		args = append(args, *fields.Description)
		idx++
	}
	if fields.IsActive != nil {
		sets = append(sets, fmt.Sprintf("is_active = $%d", idx))
		args = append(args, *fields.IsActive)
		idx++
	}

	query := fmt.Sprintf("UPDATE roles SET %s WHERE id = $1", joinSets(sets))

	tag, err := store.pool.Exec(ctx, query, args...)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Role already exists with this name")
		}
		return fmt.Errorf("postgres_role_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Role")
	}

	return nil
}

/*
Delete removes a role that no user currently holds.

Description: The association count and the delete run inside a single
transaction, so a concurrent assignment cannot slip between the check and
the delete. The RESTRICT foreign key on user_roles is the backstop.
*/
func (store *PostgresStore) Delete(ctx context.Context, id string) error {
	tx, err := store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_role_delete_begin_failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var holders int
	err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM user_roles WHERE role_id = $1`, id).Scan(&holders)
	if err != nil {
		return fmt.Errorf("postgres_role_delete_count_failed: %w", err)
	}
	if holders > 0 {
		return apperr.Conflict("Cannot delete role that is assigned to users")
	}

	tag, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return apperr.Conflict("Cannot delete role that is assigned to users")
		}
		return fmt.Errorf("postgres_role_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Role")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_role_delete_commit_failed: %w", err)
	}

	return nil
}

/*
AssignPermission links a permission to a role.

Description: Both sides are checked inside a transaction for precise
NotFound reporting; the composite primary key converts a duplicate link —
including one racing this call — into Conflict.
*/
func (store *PostgresStore) AssignPermission(ctx context.Context, roleID, permissionID string) error {
	tx, err := store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_role_assign_begin_failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := existsIn(ctx, tx, "roles", roleID); err != nil {
		return notFoundOr(err, "Role")
	}
	if err := existsIn(ctx, tx, "permissions", permissionID); err != nil {
		return notFoundOr(err, "Permission")
	}

	const insert = `
		INSERT INTO role_permissions (role_id, permission_id, granted_at)
		VALUES ($1, $2, NOW())`

	if _, err := tx.Exec(ctx, insert, roleID, permissionID); err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Role already has this permission")
		}
		return fmt.Errorf("postgres_role_assign_failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_role_assign_commit_failed: %w", err)
	}

	return nil
}

// RemovePermission unlinks a permission from a role.
func (store *PostgresStore) RemovePermission(ctx context.Context, roleID, permissionID string) error {
	const query = `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`

	tag, err := store.pool.Exec(ctx, query, roleID, permissionID)
	if err != nil {
		return fmt.Errorf("postgres_role_revoke_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Permission assignment")
	}

	return nil
}

// ListGrants returns the permissions granted to a role.
func (store *PostgresStore) ListGrants(ctx context.Context, roleID string) ([]permissions.Permission, error) {
	const query = `
		SELECT p.id, p.name, p.resource, p.action, p.description, p.created_at
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.resource, p.action`

	rows, err := store.pool.Query(ctx, query, roleID)
	if err != nil {
		return nil, fmt.Errorf("postgres_role_grants_failed: %w", err)
	}
	defer rows.Close()

	var grants []permissions.Permission
	for rows.Next() {
		var permission permissions.Permission
		if err := rows.Scan(
			&permission.ID,
			&permission.Name,
			&permission.Resource,
			&permission.Action,
			&permission.Description,
			&permission.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_role_grants_scan_failed: %w", err)
		}
		grants = append(grants, permission)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_role_grants_rows_failed: %w", err)
	}

	return grants, nil
}

// existsIn checks that a row with the given id exists in the named table.
func existsIn(ctx context.Context, tx pgx.Tx, table, id string) error {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)", table)
	if err := tx.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return fmt.Errorf("postgres_exists_check_failed: %w", err)
	}
	if !exists {
		return pgx.ErrNoRows
	}
	return nil
}

// notFoundOr maps a missing-row probe to NotFound for the named resource.
// An execution error (the probe query itself failed) passes through with
// its cause intact, so it surfaces as a server error rather than a 404.
func notFoundOr(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}
	return err
}

// joinSets assembles the SET clause of a dynamic partial update.
func joinSets(sets []string) string {
	result := sets[0]
	for _, set := range sets[1:] {
		result += ", " + set
	}
	return result
}
