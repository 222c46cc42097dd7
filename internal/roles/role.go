// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

/*
Package roles manages named permission bundles.

A role groups permissions under a globally unique, canonically upper-cased
name (e.g. "ADMIN"). Users acquire capabilities exclusively through role
membership, so every mutation here can change what any principal may do —
the service purges the authorization cache accordingly.
*/
package roles

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/permissions"
)

// # Domain Entity

// Role represents a named, administrator-managed bundle of permissions.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Permissions holds the granted catalog entries when loaded eagerly
	// (detail views). List views leave it nil.
	Permissions []permissions.Permission `json:"permissions,omitempty"`
}

// upperCaser performs Unicode-correct upper-casing, not just ASCII.
var upperCaser = cases.Upper(language.Und)

// CanonicalName normalizes a role name to its canonical stored form.
// Uniqueness is enforced against this form, so "admin" and "Admin"
// collide with "ADMIN".
func CanonicalName(name string) string {
	return upperCaser.String(strings.TrimSpace(name))
}

// # Field Identifiers

const (
	FieldName         = "name"
	FieldDescription  = "description"
	FieldPermissionID = "permissionId"
)
