// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package permissions_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/permissions"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/apperr"
)

/*
TestNew enforces the naming invariant: name is always resource.action and
both halves must be lowercase identifiers.
*/
func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		resource string
		action   string
		wantName string
		wantErr  bool
	}{
		{"simple", "user", "read", "user.read", false},
		{"underscore_segment", "audit_log", "read", "audit_log.read", false},
		{"empty_resource", "", "read", "", true},
		{"uppercase_resource", "User", "read", "", true},
		{"dotted_action", "user", "read.all", "", true},
		{"hyphenated_action", "user", "read-all", "", true},
		{"leading_digit", "2fa", "read", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			permission, err := permissions.New(tt.resource, tt.action, "desc")

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, permission.Name)
			assert.Equal(t, tt.resource, permission.Resource)
			assert.Equal(t, tt.action, permission.Action)
			assert.NotEmpty(t, permission.ID)
			assert.False(t, permission.CreatedAt.IsZero())
		})
	}
}

// fixedStore returns a canned catalog; only the read paths matter here.
type fixedStore struct {
	catalog []permissions.Permission
}

func (f *fixedStore) List(ctx context.Context) ([]permissions.Permission, error) {
	return f.catalog, nil
}

func (f *fixedStore) FindByID(ctx context.Context, id string) (*permissions.Permission, error) {
	for _, permission := range f.catalog {
		if permission.ID == id {
			return &permission, nil
		}
	}
	return nil, apperr.NotFound("Permission")
}

func (f *fixedStore) ListByResource(ctx context.Context, resource string) ([]permissions.Permission, error) {
	var result []permissions.Permission
	for _, permission := range f.catalog {
		if permission.Resource == resource {
			result = append(result, permission)
		}
	}
	return result, nil
}

func (f *fixedStore) ListByAction(ctx context.Context, action string) ([]permissions.Permission, error) {
	var result []permissions.Permission
	for _, permission := range f.catalog {
		if permission.Action == action {
			result = append(result, permission)
		}
	}
	return result, nil
}

func (f *fixedStore) Create(ctx context.Context, permission *permissions.Permission) error {
	f.catalog = append(f.catalog, *permission)
	return nil
}

func (f *fixedStore) UpdateDescription(ctx context.Context, id, description string) error {
	return nil
}

func (f *fixedStore) Delete(ctx context.Context, id string) error {
	return nil
}

/*
TestService_GroupedByResource checks the grouped catalog view keeps every
entry under its resource key.
*/
func TestService_GroupedByResource(t *testing.T) {
	mustNew := func(resource, action string) permissions.Permission {
		permission, err := permissions.New(resource, action, "")
		require.NoError(t, err)
		return *permission
	}

	store := &fixedStore{catalog: []permissions.Permission{
		mustNew("user", "read"),
		mustNew("user", "write"),
		mustNew("role", "read"),
	}}
	service := permissions.NewService(store, nil)

	grouped, err := service.GroupedByResource(context.Background())
	require.NoError(t, err)

	require.Len(t, grouped, 2)
	assert.Len(t, grouped["user"], 2)
	assert.Len(t, grouped["role"], 1)
	assert.Equal(t, "role.read", grouped["role"][0].Name)
}
