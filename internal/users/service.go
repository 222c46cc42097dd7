// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package users

import (
	"context"
	"fmt"
	"time"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/sec"
	"github.com/BrotherhoodLabs/accessgate-poc/pkg/pagination"
	"github.com/BrotherhoodLabs/accessgate-poc/pkg/uuidv7"
)

// GrantInvalidator purges a single user's cached authorization context
// after a mutation that changes what that user may do.
type GrantInvalidator interface {
	InvalidateUser(ctx context.Context, userID string) error
}

// Service implements user administration use cases.
type Service struct {
	store       Store
	invalidator GrantInvalidator
}

// NewService constructs a new [Service]. invalidator may be nil when the
// authorization cache is disabled.
func NewService(store Store, invalidator GrantInvalidator) *Service {
	return &Service{store: store, invalidator: invalidator}
}

// List returns a page of users together with pagination metadata.
func (service *Service) List(ctx context.Context, params pagination.Params) ([]User, pagination.Meta, error) {
	result, total, err := service.store.List(ctx, params)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return result, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// GetByID resolves a user with the assigned roles loaded.
func (service *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return service.store.FindByID(ctx, id)
}

// # Mutations

// CreateInput holds the data required to create a user administratively.
type CreateInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	RoleIDs   []string

	// CreatedBy is the administrator performing the create; it becomes
	// the assigned_by audit value on the initial memberships.
	CreatedBy *string
}

/*
Create persists a new user with a bcrypt-hashed password and optional
initial role memberships applied atomically.

Returns:
  - *User: Created user with memberships loaded
  - error: Conflict (duplicate email), NotFound (unknown role id)
*/
func (service *Service) Create(ctx context.Context, input CreateInput) (*User, error) {
	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("users_service_hash_failed: %w", err)
	}

	now := time.Now()
	user := &User{
		ID:           uuidv7.New(),
		Email:        CanonicalEmail(input.Email),
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := service.store.Create(ctx, user, input.RoleIDs, input.CreatedBy); err != nil {
		return nil, err
	}

	return service.store.FindByID(ctx, user.ID)
}

// UpdateInput holds the partial-update payload; nil fields are unchanged.
type UpdateInput struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	IsActive  *bool
}

/*
Update applies a partial update to a user.

Description: A supplied email is canonicalized; a supplied password is
bcrypt-hashed before it reaches storage. Deactivation takes effect on the
next request because the cached authorization context is purged.
*/
func (service *Service) Update(ctx context.Context, id string, input UpdateInput) (*User, error) {
	fields := UpdateFields{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		IsActive:  input.IsActive,
	}
	if input.Email != nil {
		canonical := CanonicalEmail(*input.Email)
		fields.Email = &canonical
	}
	if input.Password != nil {
		hash, err := sec.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("users_service_hash_failed: %w", err)
		}
		fields.PasswordHash = &hash
	}

	if err := service.store.Update(ctx, id, fields); err != nil {
		return nil, err
	}

	if err := service.invalidate(ctx, id); err != nil {
		return nil, err
	}

	return service.store.FindByID(ctx, id)
}

// Delete removes a user and purges any cached authorization context so a
// deleted user's token stops working immediately.
func (service *Service) Delete(ctx context.Context, id string) error {
	if err := service.store.Delete(ctx, id); err != nil {
		return err
	}
	return service.invalidate(ctx, id)
}

// AssignRole records a role membership and returns the updated user.
func (service *Service) AssignRole(ctx context.Context, userID, roleID string, assignedBy *string) (*User, error) {
	if err := service.store.AssignRole(ctx, userID, roleID, assignedBy); err != nil {
		return nil, err
	}

	if err := service.invalidate(ctx, userID); err != nil {
		return nil, err
	}

	return service.store.FindByID(ctx, userID)
}

// RemoveRole revokes a role membership.
func (service *Service) RemoveRole(ctx context.Context, userID, roleID string) error {
	if err := service.store.RemoveRole(ctx, userID, roleID); err != nil {
		return err
	}
	return service.invalidate(ctx, userID)
}

// invalidate purges the single affected principal; user mutations never
// change what other users may do.
func (service *Service) invalidate(ctx context.Context, userID string) error {
	if service.invalidator == nil {
		return nil
	}
	if err := service.invalidator.InvalidateUser(ctx, userID); err != nil {
		return fmt.Errorf("users_service_invalidate_failed: %w", err)
	}
	return nil
}
