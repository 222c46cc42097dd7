// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/apperr"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/dberr"
	"github.com/BrotherhoodLabs/accessgate-poc/pkg/pagination"
)

// userColumns is the canonical column list for scanning a [User].
const userColumns = `id, email, password_hash, first_name, last_name, is_active, created_at, updated_at`

// PostgresStore implements the [Store] interface using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL implementation of [Store].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// List returns a page of users, newest first, and the total count.
func (store *PostgresStore) List(ctx context.Context, params pagination.Params) ([]User, int, error) {
	var total int
	if err := store.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_count_failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, userColumns)

	rows, err := store.pool.Query(ctx, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_user_list_failed: %w", err)
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_rows_failed: %w", err)
	}

	return result, total, nil
}

// FindByID resolves a user and eagerly loads the assigned roles.
func (store *PostgresStore) FindByID(ctx context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := scanUser(store.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}

	memberships, err := store.ListAssignedRoles(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Roles = memberships

	return user, nil
}

// FindByEmail resolves a user by canonical email, without roles.
func (store *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)

	user, err := scanUser(store.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}

	return user, nil
}

/*
Create inserts a user and, atomically, its initial role memberships.

Description: Runs in one transaction so a user is never visible without
the memberships it was created with. The unique index on the canonical
email turns concurrent duplicate creates into Conflict; an unknown role id
surfaces the foreign-key violation as NotFound.
*/
func (store *PostgresStore) Create(ctx context.Context, user *User, roleIDs []string, assignedBy *string) error {
	tx, err := store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_user_create_begin_failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertUser = `
		INSERT INTO users (id, email, password_hash, first_name, last_name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = tx.Exec(ctx, insertUser,
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
		return fmt.Errorf("postgres_user_create_failed: %w", err)
	}

	const insertMembership = `
		INSERT INTO user_roles (user_id, role_id, assigned_at, assigned_by)
		VALUES ($1, $2, NOW(), $3)`

	for _, roleID := range roleIDs {
		if _, err := tx.Exec(ctx, insertMembership, user.ID, roleID, assignedBy); err != nil {
			if dberr.IsForeignKeyViolation(err) {
				return apperr.NotFound("Role")
			}
			if dberr.IsUniqueViolation(err) {
				return apperr.Conflict("User already has this role")
			}
			return fmt.Errorf("postgres_user_membership_failed: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_user_create_commit_failed: %w", err)
	}

	return nil
}

// Update applies a partial update using a dynamic SET list.
func (store *PostgresStore) Update(ctx context.Context, id string, fields UpdateFields) error {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}
	idx := 2

	appendSet := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if fields.Email != nil {
		appendSet("email", *fields.Email)
	}
	if fields.PasswordHash != nil {
		appendSet("password_hash", *fields.PasswordHash)
	}
	if fields.FirstName != nil {
		appendSet("first_name", *fields.FirstName)
	}
	if fields.LastName != nil {
		appendSet("last_name", *fields.LastName)
	}
	if fields.IsActive != nil {
		appendSet("is_active", *fields.IsActive)
	}

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $1", joinSets(sets))

	tag, err := store.pool.Exec(ctx, query, args...)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("User already exists with this email")
		}
		return fmt.Errorf("postgres_user_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}

// Delete removes a user; memberships cascade away with it.
func (store *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := store.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres_user_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

/*
AssignRole records a role membership with its audit trail.

Description: Both sides are checked inside a transaction for precise
NotFound reporting; the composite primary key converts a duplicate
membership — including one racing this call — into Conflict.
*/
func (store *PostgresStore) AssignRole(ctx context.Context, userID, roleID string, assignedBy *string) error {
	tx, err := store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_user_assign_begin_failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := rowExists(ctx, tx, "users", userID); err != nil {
		return notFoundOr(err, "User")
	}
	if err := rowExists(ctx, tx, "roles", roleID); err != nil {
		return notFoundOr(err, "Role")
	}

	const insert = `
		INSERT INTO user_roles (user_id, role_id, assigned_at, assigned_by)
		VALUES ($1, $2, NOW(), $3)`

	if _, err := tx.Exec(ctx, insert, userID, roleID, assignedBy); err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("User already has this role")
		}
		return fmt.Errorf("postgres_user_assign_failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_user_assign_commit_failed: %w", err)
	}

	return nil
}

// RemoveRole deletes a membership.
func (store *PostgresStore) RemoveRole(ctx context.Context, userID, roleID string) error {
	const query = `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`

	tag, err := store.pool.Exec(ctx, query, userID, roleID)
	if err != nil {
		return fmt.Errorf("postgres_user_revoke_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Role assignment")
	}

	return nil
}

// ListAssignedRoles returns the memberships held by a user.
func (store *PostgresStore) ListAssignedRoles(ctx context.Context, userID string) ([]AssignedRole, error) {
	const query = `
		SELECT r.id, r.name, ur.assigned_at, ur.assigned_by
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.name`

	rows, err := store.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_memberships_failed: %w", err)
	}
	defer rows.Close()

	var memberships []AssignedRole
	for rows.Next() {
		var membership AssignedRole
		if err := rows.Scan(
			&membership.ID,
			&membership.Name,
			&membership.AssignedAt,
			&membership.AssignedBy,
		); err != nil {
			return nil, fmt.Errorf("postgres_user_memberships_scan_failed: %w", err)
		}
		memberships = append(memberships, membership)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_user_memberships_rows_failed: %w", err)
	}

	return memberships, nil
}

// scanUser scans the canonical column list into a [User].
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
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
			return nil, err
		}
		return nil, fmt.Errorf("postgres_user_scan_failed: %w", err)
	}
	return user, nil
}

// rowExists checks that a row with the given id exists in the named table.
func rowExists(ctx context.Context, tx pgx.Tx, table, id string) error {
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
