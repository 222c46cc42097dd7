// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package roles

import (
	"context"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/permissions"
)

// UpdateFields carries the partial-update payload for a role. Nil fields
// are left untouched.
type UpdateFields struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// Store defines the persistence contract for roles and their grants.
//
// Implementations map storage errors to [apperr.AppError] values and are
// responsible for closing check-then-write races: name uniqueness and
// grant uniqueness ride on database constraints, and the in-use check of
// Delete runs inside a transaction.
type Store interface {
	// List returns all roles without their grants, newest first.
	List(ctx context.Context) ([]Role, error)

	// FindByID resolves a role and eagerly loads its granted permissions.
	FindByID(ctx context.Context, id string) (*Role, error)

	// Create inserts a role and, atomically, its initial grants.
	// A duplicate canonical name fails with Conflict; an unknown
	// permission id fails with NotFound.
	Create(ctx context.Context, role *Role, permissionIDs []string) error

	// Update applies a partial update. A vanished row fails with
	// NotFound; renaming onto an existing name fails with Conflict.
	Update(ctx context.Context, id string, fields UpdateFields) error

	// Delete removes a role. While any user still holds the role the
	// delete fails with Conflict; the association count and the delete
	// run in one transaction so a concurrent assignment cannot slip
	// between check and delete.
	Delete(ctx context.Context, id string) error

	// AssignPermission links a permission to a role. Either side missing
	// fails with NotFound; an existing link fails with Conflict.
	AssignPermission(ctx context.Context, roleID, permissionID string) error

	// RemovePermission unlinks a permission. A missing link fails with
	// NotFound.
	RemovePermission(ctx context.Context, roleID, permissionID string) error

	// ListGrants returns the permissions granted to a role.
	ListGrants(ctx context.Context, roleID string) ([]permissions.Permission, error)
}
