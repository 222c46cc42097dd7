// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

/*
Package auth implements registration, login, and token refresh.

Authentication is stateless: a session is nothing but a signed token pair,
and the refresh flow re-checks the account against the database so a
deactivated or deleted user cannot mint new tokens. Failure messages are
deliberately uniform — login never reveals whether an email is registered,
and refresh never reveals why a token was rejected.
*/
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/apperr"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/sec"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/users"
	"github.com/BrotherhoodLabs/accessgate-poc/pkg/uuidv7"
)

// TokenIssuer defines the contract for issuing and verifying the token
// pair. Satisfied by [sec.TokenService].
type TokenIssuer interface {
	IssuePair(userID, email string) (*sec.TokenPair, error)
	VerifyRefreshToken(tokenString string) (*sec.AuthClaims, error)
}

// Session is the result of a successful register, login, or refresh.
type Session struct {
	User         *users.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// Service implements the authentication use cases.
type Service struct {
	store  Store
	tokens TokenIssuer
}

// NewService constructs a new [Service] with its dependencies.
func NewService(store Store, tokens TokenIssuer) *Service {
	return &Service{store: store, tokens: tokens}
}

// RegisterInput holds the data required for self-registration.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

/*
Register creates a new account and signs it in.

Description: The new user starts active and with no role memberships; an
administrator grants roles afterwards. The email pre-check gives a clean
Conflict for the common case, while the unique index in the store closes
the race against a concurrent registration with the same email.

Returns:
  - *Session: The created user and a fresh token pair
  - error: Conflict ("User already exists with this email")
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := users.CanonicalEmail(input.Email)

	if _, err := service.store.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("User already exists with this email")
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	now := time.Now()
	user := &users.User{
		ID:           uuidv7.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := service.store.Create(ctx, user); err != nil {
		return nil, err
	}

	return service.startSession(user)
}

/*
Login verifies credentials and signs the user in.

Description: An unknown email, a deactivated account, and a wrong password
all fail with the same Unauthorized message, so the endpoint cannot be
used to probe which emails are registered. A store execution failure is
not a credential failure and propagates as a server error.
*/
func (service *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := service.store.FindByEmail(ctx, users.CanonicalEmail(email))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid credentials")
	}

	return service.startSession(user)
}

/*
Refresh exchanges a valid refresh token for a fresh token pair.

Description: The account is re-read from the database before new tokens
are signed, so deactivation or deletion cuts the session short no matter
how long the refresh token would otherwise remain valid. All failure modes
share one message.
*/
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := service.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	user, err := service.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Invalid refresh token")
		}
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("Invalid refresh token")
	}

	return service.startSession(user)
}

// Logout acknowledges a sign-out. Tokens are stateless, so there is
// nothing to revoke server-side; clients discard the pair.
func (service *Service) Logout(ctx context.Context, userID string) error {
	return nil
}

// startSession signs a token pair for the user and assembles the session.
func (service *Service) startSession(user *users.User) (*Session, error) {
	pair, err := service.tokens.IssuePair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_failed: %w", err)
	}

	return &Session{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}
