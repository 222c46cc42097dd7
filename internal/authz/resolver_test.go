// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package authz_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/authz"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/apperr"
)

// fakeStore is an in-memory [authz.Store].
type fakeStore struct {
	identities  map[string]*authz.Identity
	roles       map[string][]string
	permissions map[string][]string
	identityErr error
	loads       int
}

func (f *fakeStore) FindIdentity(ctx context.Context, userID string) (*authz.Identity, error) {
	f.loads++
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	identity, ok := f.identities[userID]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return identity, nil
}

func (f *fakeStore) RoleNames(ctx context.Context, userID string) ([]string, error) {
	return f.roles[userID], nil
}

func (f *fakeStore) PermissionNames(ctx context.Context, userID string) ([]string, error) {
	return f.permissions[userID], nil
}

// fakeCache is an in-memory [authz.Cache].
type fakeCache struct {
	entries map[string]*authz.Principal
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*authz.Principal{}}
}

func (f *fakeCache) Get(ctx context.Context, userID string) (*authz.Principal, error) {
	principal, ok := f.entries[userID]
	if !ok {
		return nil, apperr.NotFound("Cached principal")
	}
	return principal, nil
}

func (f *fakeCache) Set(ctx context.Context, principal *authz.Principal, ttl time.Duration) error {
	f.entries[principal.ID] = principal
	return nil
}

func (f *fakeCache) InvalidateUser(ctx context.Context, userID string) error {
	delete(f.entries, userID)
	return nil
}

func (f *fakeCache) InvalidateAll(ctx context.Context) error {
	f.entries = map[string]*authz.Principal{}
	return nil
}

func activeUserStore() *fakeStore {
	return &fakeStore{
		identities: map[string]*authz.Identity{
			"user-1": {ID: "user-1", Email: "one@accessgate.com", IsActive: true},
			"user-2": {ID: "user-2", Email: "two@accessgate.com", IsActive: false},
		},
		roles: map[string][]string{
			"user-1": {"MANAGER", "VIEWER"},
		},
		permissions: map[string][]string{
			// Both roles grant user.read; the resolver must collapse it.
			"user-1": {"user.read", "user.write", "user.read", "role.read"},
		},
	}
}

/*
TestResolver_Resolve checks the happy path: identity, sorted de-duplicated
role and permission sets.
*/
func TestResolver_Resolve(t *testing.T) {
	resolver := authz.NewResolver(activeUserStore(), nil, 0)

	principal, err := resolver.Resolve(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", principal.ID)
	assert.Equal(t, "one@accessgate.com", principal.Email)
	assert.Equal(t, []string{"MANAGER", "VIEWER"}, principal.Roles)
	assert.Equal(t, []string{"role.read", "user.read", "user.write"}, principal.Permissions)

	assert.True(t, principal.HasRole("MANAGER"))
	assert.False(t, principal.HasRole("ADMIN"))
	assert.True(t, principal.HasPermission("user.write"))
	assert.False(t, principal.HasPermission("user.delete"))
}

/*
TestResolver_RejectsMissingAndInactive verifies that unknown users and
deactivated users both fail with the same Unauthorized error.
*/
func TestResolver_RejectsMissingAndInactive(t *testing.T) {
	resolver := authz.NewResolver(activeUserStore(), nil, 0)

	for _, userID := range []string{"user-2", "ghost"} {
		_, err := resolver.Resolve(context.Background(), userID)
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, 401, ae.HTTPStatus)
		assert.Equal(t, "User not found or inactive", ae.Message)
	}
}

/*
TestResolver_StoreFailureIsNotUnauthorized verifies that an execution
failure while loading the identity keeps its cause instead of collapsing
into the 401 reserved for missing or deactivated users. The boundary maps
an unclassified error to a logged 500.
*/
func TestResolver_StoreFailureIsNotUnauthorized(t *testing.T) {
	store := activeUserStore()
	store.identityErr = errors.New("connection refused")
	resolver := authz.NewResolver(store, nil, 0)

	_, err := resolver.Resolve(context.Background(), "user-1")
	require.Error(t, err)
	require.ErrorContains(t, err, "connection refused")
	assert.Nil(t, apperr.As(err), "an infrastructure failure must not carry a client-error status")
}

/*
TestResolver_CacheFastPath checks that a second resolution is served from
the cache and that invalidation forces a fresh load.
*/
func TestResolver_CacheFastPath(t *testing.T) {
	store := activeUserStore()
	cache := newFakeCache()
	resolver := authz.NewResolver(store, cache, 30*time.Second)

	_, err := resolver.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.loads)

	_, err = resolver.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.loads, "second resolve should hit the cache")

	require.NoError(t, cache.InvalidateUser(context.Background(), "user-1"))

	_, err = resolver.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, store.loads, "invalidation should force a store load")
}

/*
TestResolver_ZeroTTLDisablesCache verifies a zero TTL bypasses the cache
entirely even when one is supplied.
*/
func TestResolver_ZeroTTLDisablesCache(t *testing.T) {
	store := activeUserStore()
	cache := newFakeCache()
	resolver := authz.NewResolver(store, cache, 0)

	_, err := resolver.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	_, err = resolver.Resolve(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 2, store.loads)
	assert.Empty(t, cache.entries)
}
