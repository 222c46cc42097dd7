// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

/*
Package permissions manages the atomic capability catalog.

A permission is a validated string of the form "resource.action"
(e.g. "user.read"). The catalog is seeded and administered, not
user-created in normal operation; the [New] constructor is the only way to
build a permission, so the naming invariant holds for every row ever
written.
*/
package permissions

import (
	"fmt"
	"regexp"
	"time"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/apperr"
	"github.com/BrotherhoodLabs/accessgate-poc/pkg/uuidv7"
)

// # Domain Entity

// Permission is an atomic capability named "<resource>.<action>".
type Permission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Resource    string    `json:"resource"`
	Action      string    `json:"action"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// segmentPattern constrains both halves of a permission name.
var segmentPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// New constructs a [Permission], enforcing the naming invariant
// name == resource + "." + action. It is the only constructor; building
// the struct by hand anywhere else is a bug.
func New(resource, action, description string) (*Permission, error) {
	if !segmentPattern.MatchString(resource) {
		return nil, apperr.ValidationError("Invalid permission resource",
			apperr.FieldError{Field: FieldResource, Message: "must be a lowercase identifier"})
	}
	if !segmentPattern.MatchString(action) {
		return nil, apperr.ValidationError("Invalid permission action",
			apperr.FieldError{Field: FieldAction, Message: "must be a lowercase identifier"})
	}

	return &Permission{
		ID:          uuidv7.New(),
		Name:        fmt.Sprintf("%s.%s", resource, action),
		Resource:    resource,
		Action:      action,
		Description: description,
		CreatedAt:   time.Now(),
	}, nil
}

// # Seeded Catalog

// Well-known permission names referenced by route guards and the seeder.
const (
	UserRead   = "user.read"
	UserWrite  = "user.write"
	UserDelete = "user.delete"

	RoleRead   = "role.read"
	RoleWrite  = "role.write"
	RoleDelete = "role.delete"

	ResourceRead   = "resource.read"
	ResourceWrite  = "resource.write"
	ResourceDelete = "resource.delete"
)

// # Field Identifiers

const (
	FieldResource    = "resource"
	FieldAction      = "action"
	FieldDescription = "description"
)
