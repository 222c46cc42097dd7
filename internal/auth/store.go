// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package auth

import (
	"context"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/users"
)

// Store defines the slice of user persistence the authentication flows
// need. It is deliberately narrower than the administration store: no
// listing, no membership management, no deletes.
type Store interface {
	// FindByEmail resolves a user by canonical email. Absent fails with
	// NotFound.
	FindByEmail(ctx context.Context, email string) (*users.User, error)

	// FindByID resolves a user by id. Absent fails with NotFound.
	FindByID(ctx context.Context, id string) (*users.User, error)

	// Create inserts a self-registered user with no role memberships.
	// A duplicate email fails with Conflict.
	Create(ctx context.Context, user *users.User) error
}
