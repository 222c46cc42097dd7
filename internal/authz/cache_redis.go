// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package authz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/apperr"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/constants"
)

// # Redis Principal Cache

// RedisPrincipalCache implements [Cache] using Redis with per-user keys.
//
// Entries are short-lived (the configured AUTHZ_CACHE_TTL) and every
// directory mutation invalidates eagerly, keeping the "deactivated user
// loses access immediately" property intact.
type RedisPrincipalCache struct {
	client *redis.Client
}

// NewPrincipalCache creates a new Redis-backed [Cache].
func NewPrincipalCache(client *redis.Client) *RedisPrincipalCache {
	return &RedisPrincipalCache{client: client}
}

/*
Get retrieves the cached principal for a user.

Description: Returns apperr.NotFound on a cache miss so callers fall
through to the store.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - *Principal: Cached authorization context
  - error: apperr.NotFound or connectivity errors
*/
func (cache *RedisPrincipalCache) Get(ctx context.Context, userID string) (*Principal, error) {
	key := constants.RedisPrefixPrincipal + userID

	payload, err := cache.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Cached principal")
		}
		return nil, fmt.Errorf("redis_principal_get_failed: %w", err)
	}

	principal := &Principal{}
	if err := json.Unmarshal(payload, principal); err != nil {
		return nil, fmt.Errorf("redis_principal_decode_failed: %w", err)
	}

	return principal, nil
}

/*
Set stores a resolved principal under its user key with the given TTL.

Parameters:
  - ctx: context.Context
  - principal: *Principal
  - ttl: time.Duration

Returns:
  - error: Encoding or storage failures
*/
func (cache *RedisPrincipalCache) Set(ctx context.Context, principal *Principal, ttl time.Duration) error {
	payload, err := json.Marshal(principal)
	if err != nil {
		return fmt.Errorf("redis_principal_encode_failed: %w", err)
	}

	key := constants.RedisPrefixPrincipal + principal.ID
	if err := cache.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_principal_set_failed: %w", err)
	}

	return nil
}

/*
InvalidateUser drops the cached principal for a single user.

Description: Called on every user-scoped mutation (profile update,
deactivation, deletion, role assignment) so the change is visible on the
very next request.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - error: Deletion failures
*/
func (cache *RedisPrincipalCache) InvalidateUser(ctx context.Context, userID string) error {
	key := constants.RedisPrefixPrincipal + userID
	if err := cache.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis_principal_invalidate_failed: %w", err)
	}
	return nil
}

/*
InvalidateAll purges every cached principal.

Description: Role and permission mutations can affect any number of users,
so the whole prefix is scanned and deleted rather than tracking reverse
membership.

Parameters:
  - ctx: context.Context

Returns:
  - error: Scan or deletion failures
*/
func (cache *RedisPrincipalCache) InvalidateAll(ctx context.Context) error {
	iter := cache.client.Scan(ctx, 0, constants.RedisPrefixPrincipal+"*", 0).Iterator()

	for iter.Next(ctx) {
		if err := cache.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis_principal_purge_failed: %w", err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis_principal_scan_failed: %w", err)
	}

	return nil
}
