// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package authz

import (
	"context"
	"fmt"
	"time"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/apperr"
)

// # Contracts & Types

// Identity is the user row projection the resolver needs.
type Identity struct {
	ID       string
	Email    string
	IsActive bool
}

// Store defines the credential-store reads required for resolution.
type Store interface {
	// FindIdentity loads the user row. Returns apperr.NotFound if absent.
	FindIdentity(ctx context.Context, userID string) (*Identity, error)

	// RoleNames lists the names of every role assigned to the user.
	RoleNames(ctx context.Context, userID string) ([]string, error)

	// PermissionNames lists the distinct permission names granted to the
	// user through any of their roles.
	PermissionNames(ctx context.Context, userID string) ([]string, error)
}

// Cache defines the optional principal cache in front of the store.
type Cache interface {
	Get(ctx context.Context, userID string) (*Principal, error)
	Set(ctx context.Context, principal *Principal, ttl time.Duration) error
	InvalidateUser(ctx context.Context, userID string) error
	InvalidateAll(ctx context.Context) error
}

// Resolver computes the authorization context for a user on demand.
type Resolver struct {
	store Store
	cache Cache
	ttl   time.Duration
}

// NewResolver constructs a [Resolver].
//
// cache may be nil (or ttl zero) to disable caching, in which case every
// call reads fresh from the store.
func NewResolver(store Store, cache Cache, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		cache = nil
	}
	return &Resolver{store: store, cache: cache, ttl: ttl}
}

// # Resolution

/*
Resolve turns a verified userID into a [*Principal].

Description: Loads the user (rejecting missing or deactivated accounts),
then flattens every UserRole → Role → RolePermission → Permission chain
into de-duplicated role and permission sets.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - *Principal: Resolved authorization context
  - error: apperr.Unauthorized if the user is absent or inactive
*/
func (resolver *Resolver) Resolve(ctx context.Context, userID string) (*Principal, error) {

	// Cache fast path. A miss (or any cache error) falls through to the store.
	if resolver.cache != nil {
		if principal, err := resolver.cache.Get(ctx, userID); err == nil {
			return principal, nil
		}
	}

	// Fresh load. The active re-check on every request is what makes
	// deactivation effective before token expiry. Only a genuinely missing
	// row downgrades to Unauthorized; an execution failure (pool exhausted,
	// database down) must keep its cause so the boundary reports a server
	// error instead of telling the whole fleet to re-authenticate.
	identity, err := resolver.store.FindIdentity(ctx, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("User not found or inactive")
		}
		return nil, fmt.Errorf("authz_resolver_identity_failed: %w", err)
	}
	if !identity.IsActive {
		return nil, apperr.Unauthorized("User not found or inactive")
	}

	roleNames, err := resolver.store.RoleNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("authz_resolver_roles_failed: %w", err)
	}

	permissionNames, err := resolver.store.PermissionNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("authz_resolver_permissions_failed: %w", err)
	}

	principal := &Principal{
		ID:          identity.ID,
		Email:       identity.Email,
		Roles:       dedupe(roleNames),
		Permissions: dedupe(permissionNames),
	}

	// Best-effort cache fill. Resolution already succeeded, so a cache
	// write failure must not fail the request.
	if resolver.cache != nil {
		_ = resolver.cache.Set(ctx, principal, resolver.ttl)
	}

	return principal, nil
}
