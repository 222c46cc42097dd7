// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

// Command seed bootstraps a development or demo database.
//
// It runs the schema migrations, then idempotently seeds the permission
// catalog, three baseline roles, and three bootstrap users. Re-running is
// safe: every insert uses ON CONFLICT DO NOTHING, so existing rows —
// including ones edited by hand — are left alone.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/permissions"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/config"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/migration"
	pgstore "github.com/BrotherhoodLabs/accessgate-poc/internal/platform/postgres"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/sec"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/roles"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/users"
	"github.com/BrotherhoodLabs/accessgate-poc/pkg/uuidv7"
)

// catalogEntry describes one permission to seed.
type catalogEntry struct {
	resource    string
	action      string
	description string
}

// catalog is the full permission matrix: three resources, three actions.
var catalog = []catalogEntry{
	{"user", "read", "View user accounts"},
	{"user", "write", "Create and modify user accounts"},
	{"user", "delete", "Delete user accounts"},
	{"role", "read", "View roles and the permission catalog"},
	{"role", "write", "Create and modify roles and grants"},
	{"role", "delete", "Delete roles and permissions"},
	{"resource", "read", "View protected resources"},
	{"resource", "write", "Create and modify protected resources"},
	{"resource", "delete", "Delete protected resources"},
}

// roleSeed describes one role and the permission names it carries.
type roleSeed struct {
	name        string
	description string
	grants      []string
}

var roleSeeds = []roleSeed{
	{
		name:        "ADMIN",
		description: "Full administrative access",
		grants: []string{
			permissions.UserRead, permissions.UserWrite, permissions.UserDelete,
			permissions.RoleRead, permissions.RoleWrite, permissions.RoleDelete,
			permissions.ResourceRead, permissions.ResourceWrite, permissions.ResourceDelete,
		},
	},
	{
		name:        "MANAGER",
		description: "Manages users, read-only elsewhere",
		grants: []string{
			permissions.UserRead, permissions.UserWrite,
			permissions.RoleRead, permissions.ResourceRead,
		},
	},
	{
		name:        "VIEWER",
		description: "Read-only access",
		grants: []string{
			permissions.UserRead, permissions.RoleRead, permissions.ResourceRead,
		},
	},
}

// userSeed describes one bootstrap account.
type userSeed struct {
	email     string
	password  string
	firstName string
	lastName  string
	role      string
}

var userSeeds = []userSeed{
	{"admin@accessgate.com", "Admin123!", "Admin", "User", "ADMIN"},
	{"manager@accessgate.com", "Manager123!", "Manager", "User", "MANAGER"},
	{"viewer@accessgate.com", "Viewer123!", "Viewer", "User", "VIEWER"},
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("app", "accessgate-seed"))

	cfg, err := config.Load()
	must(log, err, "load configuration")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer pool.Close()

	must(log, seed(ctx, pool, log), "seed database")

	log.Info("seed_complete")
}

// seed inserts the catalog, roles, grants, users, and memberships.
func seed(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	// ── 1. Permission catalog ─────────────────────────────────────────────
	for _, entry := range catalog {
		permission, err := permissions.New(entry.resource, entry.action, entry.description)
		if err != nil {
			return fmt.Errorf("seed_catalog_invalid: %w", err)
		}

		const query = `
			INSERT INTO permissions (id, name, resource, action, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (name) DO NOTHING`

		_, err = pool.Exec(ctx, query,
			permission.ID, permission.Name, permission.Resource,
			permission.Action, permission.Description, permission.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("seed_catalog_failed: %w", err)
		}
	}
	log.Info("catalog_seeded", slog.Int("permissions", len(catalog)))

	// ── 2. Roles and grants ───────────────────────────────────────────────
	for _, entry := range roleSeeds {
		now := time.Now()

		const insertRole = `
			INSERT INTO roles (id, name, description, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, TRUE, $4, $4)
			ON CONFLICT (name) DO NOTHING`

		if _, err := pool.Exec(ctx, insertRole, uuidv7.New(), roles.CanonicalName(entry.name), entry.description, now); err != nil {
			return fmt.Errorf("seed_role_failed: %w", err)
		}

		const insertGrant = `
			INSERT INTO role_permissions (role_id, permission_id, granted_at)
			SELECT r.id, p.id, NOW()
			FROM roles r, permissions p
			WHERE r.name = $1 AND p.name = $2
			ON CONFLICT DO NOTHING`

		for _, grant := range entry.grants {
			if _, err := pool.Exec(ctx, insertGrant, entry.name, grant); err != nil {
				return fmt.Errorf("seed_grant_failed: %w", err)
			}
		}
	}
	log.Info("roles_seeded", slog.Int("roles", len(roleSeeds)))

	// ── 3. Bootstrap users ────────────────────────────────────────────────
	for _, entry := range userSeeds {
		hash, err := sec.HashPassword(entry.password)
		if err != nil {
			return fmt.Errorf("seed_hash_failed: %w", err)
		}

		const insertUser = `
			INSERT INTO users (id, email, password_hash, first_name, last_name, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
			ON CONFLICT (email) DO NOTHING`

		now := time.Now()
		email := users.CanonicalEmail(entry.email)
		if _, err := pool.Exec(ctx, insertUser, uuidv7.New(), email, hash, entry.firstName, entry.lastName, now); err != nil {
			return fmt.Errorf("seed_user_failed: %w", err)
		}

		const insertMembership = `
			INSERT INTO user_roles (user_id, role_id, assigned_at)
			SELECT u.id, r.id, NOW()
			FROM users u, roles r
			WHERE u.email = $1 AND r.name = $2
			ON CONFLICT DO NOTHING`

		if _, err := pool.Exec(ctx, insertMembership, email, entry.role); err != nil {
			return fmt.Errorf("seed_membership_failed: %w", err)
		}

		log.Info("user_seeded", slog.String("email", email), slog.String("role", entry.role))
	}

	return nil
}

// must logs a structured fatal error and terminates the process if err is non-nil.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("seed failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
