// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

/*
Package users manages user accounts and their role memberships.

A user record is the subject of every authorization decision. Capabilities
are never stored on the user directly: they derive entirely from role
memberships kept in the user_roles association.
*/
package users

import (
	"strings"
	"time"
)

// # Domain Entity

// User represents a registered account.
//
// PasswordHash is excluded from JSON marshaling; the bcrypt hash never
// leaves the service boundary.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Roles holds the memberships when loaded eagerly (detail views).
	// List views leave it nil.
	Roles []AssignedRole `json:"roles,omitempty"`
}

// AssignedRole is the membership view of a role held by a user, including
// the assignment audit fields.
type AssignedRole struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	AssignedAt time.Time `json:"assignedAt"`
	AssignedBy *string   `json:"assignedBy,omitempty"`
}

// CanonicalEmail normalizes an email address to its canonical stored form.
// Uniqueness is enforced against this form.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// # Field Identifiers

const (
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldRoleID    = "roleId"
)
