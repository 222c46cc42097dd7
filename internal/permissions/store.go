// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package permissions

import "context"

// Store defines the persistence contract for the permission catalog.
//
// Implementations map storage errors to [apperr.AppError] values: missing
// rows become NotFound, unique-constraint violations become Conflict.
type Store interface {
	// List returns the full catalog ordered by resource, then action.
	List(ctx context.Context) ([]Permission, error)

	// FindByID resolves a permission by primary key.
	FindByID(ctx context.Context, id string) (*Permission, error)

	// ListByResource returns every permission for one resource.
	ListByResource(ctx context.Context, resource string) ([]Permission, error)

	// ListByAction returns every permission for one action across resources.
	ListByAction(ctx context.Context, action string) ([]Permission, error)

	// Create inserts a new catalog entry. A duplicate name fails with
	// Conflict, driven by the unique constraint rather than a pre-check.
	Create(ctx context.Context, permission *Permission) error

	// UpdateDescription changes the only mutable field. The name is
	// derived from resource and action and never changes after creation.
	UpdateDescription(ctx context.Context, id, description string) error

	// Delete removes a catalog entry. Grants referencing it cascade.
	Delete(ctx context.Context, id string) error
}
