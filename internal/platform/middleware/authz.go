// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/authz"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/apperr"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/ctxutil"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/respond"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify access tokens in middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the token
// service implementation, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	VerifyAccessToken(tokenStr string) (*sec.AuthClaims, error)
}

// PrincipalResolver turns a verified user ID into an authorization context.
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID string) (*authz.Principal, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header,
// then resolves the caller's roles and permissions fresh from the store.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Resolve the [*authz.Principal] via [PrincipalResolver]. The resolver
//     re-checks the user's active flag, so a stale token for a deactivated
//     user is rejected here.
//  5. Inject the principal into the request context for downstream use.
func Authenticate(verifier TokenVerifier, resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			tokenStr := parts[1]
			claims, err := verifier.VerifyAccessToken(tokenStr)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 4. Principal Resolution ───────────────────────────────────────
			principal, err := resolver.Resolve(request.Context(), claims.UserID)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 5. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetPrincipal(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequirePermission blocks requests whose principal lacks the named permission.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It implies
// [RequireAuth], so mounting both is unnecessary.
//
// # Flow
//  1. No principal in context → 401 (authentication, not permission, is the gap).
//  2. Permission absent from the resolved set → 403.
func RequirePermission(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())

			if principal == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !principal.HasPermission(name) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequireRole blocks requests whose principal lacks the named role.
//
// Same contract as [RequirePermission], checked against the role set.
func RequireRole(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())

			if principal == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !principal.HasRole(name) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient role"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
