// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package roles_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/permissions"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/apperr"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/roles"
	"github.com/BrotherhoodLabs/accessgate-poc/pkg/pointer"
)

// fakeStore is an in-memory [roles.Store] with a membership counter so
// the in-use delete rule can be exercised.
type fakeStore struct {
	roles   map[string]*roles.Role
	grants  map[string][]string
	catalog map[string]permissions.Permission
	holders map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		roles:  map[string]*roles.Role{},
		grants: map[string][]string{},
		catalog: map[string]permissions.Permission{
			"perm-read":  {ID: "perm-read", Name: "user.read", Resource: "user", Action: "read"},
			"perm-write": {ID: "perm-write", Name: "user.write", Resource: "user", Action: "write"},
		},
		holders: map[string]int{},
	}
}

func (f *fakeStore) List(ctx context.Context) ([]roles.Role, error) {
	result := make([]roles.Role, 0, len(f.roles))
	for _, role := range f.roles {
		result = append(result, *role)
	}
	return result, nil
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*roles.Role, error) {
	role, ok := f.roles[id]
	if !ok {
		return nil, apperr.NotFound("Role")
	}
	clone := *role
	clone.Permissions, _ = f.ListGrants(ctx, id)
	return &clone, nil
}

func (f *fakeStore) Create(ctx context.Context, role *roles.Role, permissionIDs []string) error {
	for _, existing := range f.roles {
		if existing.Name == role.Name {
			return apperr.Conflict("Role already exists with this name")
		}
	}
	for _, permissionID := range permissionIDs {
		if _, ok := f.catalog[permissionID]; !ok {
			return apperr.NotFound("Permission")
		}
	}
	clone := *role
	f.roles[role.ID] = &clone
	f.grants[role.ID] = append([]string(nil), permissionIDs...)
	return nil
}

func (f *fakeStore) Update(ctx context.Context, id string, fields roles.UpdateFields) error {
	role, ok := f.roles[id]
	if !ok {
		return apperr.NotFound("Role")
	}
	if fields.Name != nil {
		role.Name = *fields.Name
	}
	if fields.Description != nil {
		role.Description = *fields.Description
	}
	if fields.IsActive != nil {
		role.IsActive = *fields.IsActive
	}
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.roles[id]; !ok {
		return apperr.NotFound("Role")
	}
	if f.holders[id] > 0 {
		return apperr.Conflict("Cannot delete role that is assigned to users")
	}
	delete(f.roles, id)
	delete(f.grants, id)
	return nil
}

func (f *fakeStore) AssignPermission(ctx context.Context, roleID, permissionID string) error {
	if _, ok := f.roles[roleID]; !ok {
		return apperr.NotFound("Role")
	}
	if _, ok := f.catalog[permissionID]; !ok {
		return apperr.NotFound("Permission")
	}
	for _, existing := range f.grants[roleID] {
		if existing == permissionID {
			return apperr.Conflict("Role already has this permission")
		}
	}
	f.grants[roleID] = append(f.grants[roleID], permissionID)
	return nil
}

func (f *fakeStore) RemovePermission(ctx context.Context, roleID, permissionID string) error {
	grants := f.grants[roleID]
	for i, existing := range grants {
		if existing == permissionID {
			f.grants[roleID] = append(grants[:i], grants[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Permission assignment")
}

func (f *fakeStore) ListGrants(ctx context.Context, roleID string) ([]permissions.Permission, error) {
	var result []permissions.Permission
	for _, permissionID := range f.grants[roleID] {
		result = append(result, f.catalog[permissionID])
	}
	return result, nil
}

// countingInvalidator counts full cache purges.
type countingInvalidator struct {
	purges int
}

func (c *countingInvalidator) InvalidateAll(ctx context.Context) error {
	c.purges++
	return nil
}

/*
TestService_Create verifies canonicalization, initial grants, and the
duplicate-name conflict against the canonical form.
*/
func TestService_Create(t *testing.T) {
	service := roles.NewService(newFakeStore(), nil)

	role, err := service.Create(context.Background(), roles.CreateInput{
		Name:          "  editor ",
		Description:   "Content editors",
		PermissionIDs: []string{"perm-read", "perm-write"},
	})
	require.NoError(t, err)

	assert.Equal(t, "EDITOR", role.Name)
	assert.True(t, role.IsActive)
	assert.Len(t, role.Permissions, 2)

	// "Editor" collides with "EDITOR" after canonicalization.
	_, err = service.Create(context.Background(), roles.CreateInput{Name: "Editor"})
	require.Error(t, err)
	assert.Equal(t, "Role already exists with this name", apperr.As(err).Message)
}

/*
TestService_Delete_InUse walks the full lifecycle: delete blocked while a
user holds the role, then allowed once the membership is gone.
*/
func TestService_Delete_InUse(t *testing.T) {
	store := newFakeStore()
	invalidator := &countingInvalidator{}
	service := roles.NewService(store, invalidator)

	role, err := service.Create(context.Background(), roles.CreateInput{Name: "TEMP"})
	require.NoError(t, err)

	store.holders[role.ID] = 1

	err = service.Delete(context.Background(), role.ID)
	require.Error(t, err)
	assert.Equal(t, "Cannot delete role that is assigned to users", apperr.As(err).Message)
	assert.Equal(t, 0, invalidator.purges, "failed delete must not purge the cache")

	store.holders[role.ID] = 0

	require.NoError(t, service.Delete(context.Background(), role.ID))
	assert.Equal(t, 1, invalidator.purges)

	err = service.Delete(context.Background(), role.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestService_GrantLifecycle assigns and revokes a permission, checking the
conflict and not-found edges and that every successful mutation purges
the whole cache.
*/
func TestService_GrantLifecycle(t *testing.T) {
	store := newFakeStore()
	invalidator := &countingInvalidator{}
	service := roles.NewService(store, invalidator)

	role, err := service.Create(context.Background(), roles.CreateInput{Name: "SUPPORT"})
	require.NoError(t, err)
	assert.Equal(t, 0, invalidator.purges, "a new role has no members to invalidate")

	withGrant, err := service.AssignPermission(context.Background(), role.ID, "perm-read")
	require.NoError(t, err)
	require.Len(t, withGrant.Permissions, 1)
	assert.Equal(t, "user.read", withGrant.Permissions[0].Name)

	_, err = service.AssignPermission(context.Background(), role.ID, "perm-read")
	require.Error(t, err)
	assert.Equal(t, "Role already has this permission", apperr.As(err).Message)

	_, err = service.AssignPermission(context.Background(), role.ID, "perm-ghost")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)

	require.NoError(t, service.RemovePermission(context.Background(), role.ID, "perm-read"))

	err = service.RemovePermission(context.Background(), role.ID, "perm-read")
	require.Error(t, err)
	assert.Equal(t, "Permission assignment not found", apperr.As(err).Message)

	assert.Equal(t, 2, invalidator.purges)
}

/*
TestService_Update verifies rename canonicalization and partial updates.
*/
func TestService_Update(t *testing.T) {
	store := newFakeStore()
	invalidator := &countingInvalidator{}
	service := roles.NewService(store, invalidator)

	role, err := service.Create(context.Background(), roles.CreateInput{Name: "OLD", Description: "before"})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), role.ID, roles.UpdateInput{
		Name:     pointer.To("renamed"),
		IsActive: pointer.To(false),
	})
	require.NoError(t, err)

	assert.Equal(t, "RENAMED", updated.Name)
	assert.Equal(t, "before", updated.Description)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 1, invalidator.purges)
}
