// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

/*
Package authz turns a verified user identity into an authorization context.

It owns the per-request resolution of the user's roles and the union of
their roles' permissions, producing the de-duplicated sets every access
decision is made against.

# Architecture

  - Principal: The resolved authorization context attached to a request.
  - Resolver: Loads the user, role names, and distinct permission names
    from the credential store on every protected request.
  - PrincipalCache: Optional short-TTL Redis cache in front of the store,
    invalidated on every directory mutation.

Resolution always re-checks the user's active flag, so deactivating a user
cuts off access before their tokens expire.
*/
package authz

import "sort"

// # Authorization Context

// Principal is the resolved authorization context of an authenticated caller.
//
// Roles and Permissions carry set semantics: each name appears exactly once,
// regardless of how many roles grant it.
type Principal struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// HasRole reports whether the principal holds the named role.
func (p *Principal) HasRole(name string) bool {
	for _, role := range p.Roles {
		if role == name {
			return true
		}
	}
	return false
}

// HasPermission reports whether the principal holds the named permission.
func (p *Principal) HasPermission(name string) bool {
	for _, permission := range p.Permissions {
		if permission == name {
			return true
		}
	}
	return false
}

// dedupe returns a sorted copy of names with duplicates and empties removed.
//
// The store queries already apply DISTINCT, but set semantics are a contract
// of the resolver itself, so the flattening is deduplicated here as well.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))

	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}

	sort.Strings(result)
	return result
}
