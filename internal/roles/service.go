// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package roles

import (
	"context"
	"fmt"
	"time"

	"github.com/BrotherhoodLabs/accessgate-poc/pkg/uuidv7"
)

// GrantInvalidator purges cached authorization contexts after a mutation
// that can change any principal's role or permission set.
type GrantInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// Service implements role management use cases.
type Service struct {
	store       Store
	invalidator GrantInvalidator
}

// NewService constructs a new [Service]. invalidator may be nil when the
// authorization cache is disabled.
func NewService(store Store, invalidator GrantInvalidator) *Service {
	return &Service{store: store, invalidator: invalidator}
}

// List returns all roles.
func (service *Service) List(ctx context.Context) ([]Role, error) {
	return service.store.List(ctx)
}

// GetByID resolves a role with its granted permissions.
func (service *Service) GetByID(ctx context.Context, id string) (*Role, error) {
	return service.store.FindByID(ctx, id)
}

// # Mutations

// CreateInput holds the data required to create a role.
type CreateInput struct {
	Name          string
	Description   string
	PermissionIDs []string
}

/*
Create persists a new role under its canonical name, with optional initial
grants applied atomically.

Parameters:
  - ctx: context.Context
  - input: CreateInput

Returns:
  - *Role: Created role with grants loaded
  - error: Conflict (duplicate name), NotFound (unknown permission id)
*/
func (service *Service) Create(ctx context.Context, input CreateInput) (*Role, error) {
	now := time.Now()
	role := &Role{
		ID:          uuidv7.New(),
		Name:        CanonicalName(input.Name),
		Description: input.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := service.store.Create(ctx, role, input.PermissionIDs); err != nil {
		return nil, err
	}

	return service.store.FindByID(ctx, role.ID)
}

// UpdateInput holds the partial-update payload; nil fields are unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

/*
Update applies a partial update to a role.

Description: Only supplied fields change. A supplied name is
canonicalized first; uniqueness against other roles is enforced by the
store's unique constraint rather than a racy pre-check.

Returns:
  - *Role: Updated role
  - error: NotFound or Conflict
*/
func (service *Service) Update(ctx context.Context, id string, input UpdateInput) (*Role, error) {
	fields := UpdateFields{
		Description: input.Description,
		IsActive:    input.IsActive,
	}
	if input.Name != nil {
		canonical := CanonicalName(*input.Name)
		fields.Name = &canonical
	}

	if err := service.store.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	if err := service.invalidate(ctx); err != nil {
		return nil, err
	}

	return service.store.FindByID(ctx, id)
}

/*
Delete removes a role that no user currently holds.

Returns:
  - error: Conflict ("Cannot delete role that is assigned to users")
    while any UserRole references it; NotFound if absent
*/
func (service *Service) Delete(ctx context.Context, id string) error {
	if err := service.store.Delete(ctx, id); err != nil {
		return err
	}
	return service.invalidate(ctx)
}

// AssignPermission grants a permission to a role.
func (service *Service) AssignPermission(ctx context.Context, roleID, permissionID string) (*Role, error) {
	if err := service.store.AssignPermission(ctx, roleID, permissionID); err != nil {
		return nil, err
	}

	if err := service.invalidate(ctx); err != nil {
		return nil, err
	}

	return service.store.FindByID(ctx, roleID)
}

// RemovePermission revokes a granted permission from a role.
func (service *Service) RemovePermission(ctx context.Context, roleID, permissionID string) error {
	if err := service.store.RemovePermission(ctx, roleID, permissionID); err != nil {
		return err
	}
	return service.invalidate(ctx)
}

// invalidate purges every cached principal; any role mutation can change
// an arbitrary set of users' effective capabilities.
func (service *Service) invalidate(ctx context.Context) error {
	if service.invalidator == nil {
		return nil
	}
	if err := service.invalidator.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("roles_service_invalidate_failed: %w", err)
	}
	return nil
}
