// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package permissions

import (
	"context"
	"fmt"
)

// GrantInvalidator purges cached authorization contexts after a mutation
// that can change what any principal is allowed to do.
type GrantInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

// Service implements permission catalog use cases.
type Service struct {
	store       Store
	invalidator GrantInvalidator
}

// NewService constructs a new [Service]. invalidator may be nil when the
// authorization cache is disabled.
func NewService(store Store, invalidator GrantInvalidator) *Service {
	return &Service{store: store, invalidator: invalidator}
}

// List returns the full permission catalog.
func (service *Service) List(ctx context.Context) ([]Permission, error) {
	return service.store.List(ctx)
}

// GetByID resolves a single permission.
func (service *Service) GetByID(ctx context.Context, id string) (*Permission, error) {
	return service.store.FindByID(ctx, id)
}

// ByResource returns the permissions of one resource.
func (service *Service) ByResource(ctx context.Context, resource string) ([]Permission, error) {
	return service.store.ListByResource(ctx, resource)
}

// ByAction returns the permissions sharing one action.
func (service *Service) ByAction(ctx context.Context, action string) ([]Permission, error) {
	return service.store.ListByAction(ctx, action)
}

// GroupedByResource returns the catalog keyed by resource name.
func (service *Service) GroupedByResource(ctx context.Context) (map[string][]Permission, error) {
	catalog, err := service.store.List(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]Permission)
	for _, permission := range catalog {
		grouped[permission.Resource] = append(grouped[permission.Resource], permission)
	}

	return grouped, nil
}

// CreateInput holds the data for a new catalog entry.
type CreateInput struct {
	Resource    string
	Action      string
	Description string
}

// Create builds a permission through the validating constructor and persists it.
// A duplicate name surfaces as Conflict from the store's unique constraint.
func (service *Service) Create(ctx context.Context, input CreateInput) (*Permission, error) {
	permission, err := New(input.Resource, input.Action, input.Description)
	if err != nil {
		return nil, err
	}

	if err := service.store.Create(ctx, permission); err != nil {
		return nil, err
	}

	return permission, nil
}

// UpdateDescription changes a permission's description. The name is
// immutable, so no uniqueness re-check is needed.
func (service *Service) UpdateDescription(ctx context.Context, id, description string) (*Permission, error) {
	if err := service.store.UpdateDescription(ctx, id, description); err != nil {
		return nil, err
	}
	return service.store.FindByID(ctx, id)
}

// Delete removes a permission. Grants cascade, so every cached
// authorization context is purged.
func (service *Service) Delete(ctx context.Context, id string) error {
	if err := service.store.Delete(ctx, id); err != nil {
		return err
	}

	if service.invalidator != nil {
		if err := service.invalidator.InvalidateAll(ctx); err != nil {
			return fmt.Errorf("permissions_service_invalidate_failed: %w", err)
		}
	}

	return nil
}
