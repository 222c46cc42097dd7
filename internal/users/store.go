// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package users

import (
	"context"

	"github.com/BrotherhoodLabs/accessgate-poc/pkg/pagination"
)

// UpdateFields carries the partial-update payload for a user. Nil fields
// are left untouched.
type UpdateFields struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	IsActive     *bool
}

// Store defines the persistence contract for users and their role
// memberships.
//
// Implementations map storage errors to [apperr.AppError] values. Email
// uniqueness and membership uniqueness ride on database constraints so
// concurrent writers cannot slip past an application-level pre-check.
type Store interface {
	// List returns a page of users, newest first, and the total count.
	List(ctx context.Context, params pagination.Params) ([]User, int, error)

	// FindByID resolves a user and eagerly loads the assigned roles.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail resolves a user by canonical email, without roles.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create inserts a user and, atomically, its initial role
	// memberships. A duplicate email fails with Conflict; an unknown
	// role id fails with NotFound. assignedBy may be nil for
	// self-registration.
	Create(ctx context.Context, user *User, roleIDs []string, assignedBy *string) error

	// Update applies a partial update. A vanished row fails with
	// NotFound; a duplicate email fails with Conflict.
	Update(ctx context.Context, id string, fields UpdateFields) error

	// Delete removes a user; memberships cascade away with it.
	Delete(ctx context.Context, id string) error

	// AssignRole records a role membership with its audit trail. Either
	// side missing fails with NotFound; an existing membership fails
	// with Conflict.
	AssignRole(ctx context.Context, userID, roleID string, assignedBy *string) error

	// RemoveRole deletes a membership. A missing membership fails with
	// NotFound.
	RemoveRole(ctx context.Context, userID, roleID string) error

	// ListAssignedRoles returns the memberships held by a user.
	ListAssignedRoles(ctx context.Context, userID string) ([]AssignedRole, error)
}
