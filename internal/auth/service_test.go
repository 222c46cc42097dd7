// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrotherhoodLabs/accessgate-poc/internal/auth"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/apperr"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/platform/sec"
	"github.com/BrotherhoodLabs/accessgate-poc/internal/users"
)

// fakeStore is an in-memory [auth.Store].
type fakeStore struct {
	byID    map[string]*users.User
	byEmail map[string]*users.User
	findErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[string]*users.User{}, byEmail: map[string]*users.User{}}
}

func (f *fakeStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	user, ok := f.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*users.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	user, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (f *fakeStore) Create(ctx context.Context, user *users.User) error {
	if _, ok := f.byEmail[user.Email]; ok {
		return apperr.Conflict("User already exists with this email")
	}
	clone := *user
	f.byID[user.ID] = &clone
	f.byEmail[user.Email] = f.byID[user.ID]
	return nil
}

func newService(t *testing.T) (*auth.Service, *fakeStore, *sec.TokenService) {
	t.Helper()
	tokens, err := sec.NewTokenService("access-secret", "refresh-secret", "accessgate.test", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	store := newFakeStore()
	return auth.NewService(store, tokens), store, tokens
}

func register(t *testing.T, service *auth.Service, email string) *auth.Session {
	t.Helper()
	session, err := service.Register(context.Background(), auth.RegisterInput{
		Email:     email,
		Password:  "Sup3rSecret!",
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return session
}

/*
TestService_Register checks the happy path and the duplicate-email
conflict, including canonicalization of the address.
*/
func TestService_Register(t *testing.T) {
	service, _, tokens := newService(t)

	session := register(t, service, "  New@AccessGate.COM ")

	assert.Equal(t, "new@accessgate.com", session.User.Email)
	assert.True(t, session.User.IsActive)
	assert.Empty(t, session.User.Roles, "self-registration grants no roles")
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)

	claims, err := tokens.VerifyAccessToken(session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)

	// Same address in a different case is still a duplicate.
	_, err = service.Register(context.Background(), auth.RegisterInput{
		Email: "NEW@accessgate.com", Password: "Sup3rSecret!", FirstName: "Test", LastName: "User",
	})
	require.Error(t, err)
	assert.Equal(t, "User already exists with this email", apperr.As(err).Message)
}

/*
TestService_Login_UniformFailures verifies that an unknown email, a
deactivated account, and a wrong password all produce the identical
Unauthorized response, so login cannot probe for registered emails.
*/
func TestService_Login_UniformFailures(t *testing.T) {
	service, store, _ := newService(t)

	session := register(t, service, "active@accessgate.com")
	register(t, service, "inactive@accessgate.com")
	store.byEmail["inactive@accessgate.com"].IsActive = false

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown_email", "ghost@accessgate.com", "Sup3rSecret!"},
		{"deactivated_account", "inactive@accessgate.com", "Sup3rSecret!"},
		{"wrong_password", "active@accessgate.com", "WrongSecret!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Login(context.Background(), tt.email, tt.password)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, 401, ae.HTTPStatus)
			assert.Equal(t, "Invalid credentials", ae.Message)
		})
	}

	// Sanity: correct credentials still work, case-insensitively.
	recovered, err := service.Login(context.Background(), "Active@AccessGate.com", "Sup3rSecret!")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, recovered.User.ID)
}

/*
TestService_Refresh exchanges a refresh token for a new pair and checks
every failure mode collapses to the same message.
*/
func TestService_Refresh(t *testing.T) {
	service, store, _ := newService(t)
	session := register(t, service, "refresh@accessgate.com")

	refreshed, err := service.Refresh(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)

	t.Run("garbage_token", func(t *testing.T) {
		_, err := service.Refresh(context.Background(), "not-a-token")
		require.Error(t, err)
		assert.Equal(t, "Invalid refresh token", apperr.As(err).Message)
	})

	t.Run("access_token_is_not_a_refresh_token", func(t *testing.T) {
		_, err := service.Refresh(context.Background(), session.AccessToken)
		require.Error(t, err)
		assert.Equal(t, "Invalid refresh token", apperr.As(err).Message)
	})

	t.Run("deactivated_user", func(t *testing.T) {
		store.byID[session.User.ID].IsActive = false
		defer func() { store.byID[session.User.ID].IsActive = true }()

		_, err := service.Refresh(context.Background(), session.RefreshToken)
		require.Error(t, err)
		assert.Equal(t, "Invalid refresh token", apperr.As(err).Message)
	})
}

/*
TestService_StoreFailureIsNotUnauthorized verifies that a database outage
during login or refresh surfaces as a server error, never as the uniform
credential failure reserved for bad input.
*/
func TestService_StoreFailureIsNotUnauthorized(t *testing.T) {
	service, store, _ := newService(t)
	session := register(t, service, "outage@accessgate.com")

	store.findErr = errors.New("connection refused")

	t.Run("login", func(t *testing.T) {
		_, err := service.Login(context.Background(), "outage@accessgate.com", "Sup3rSecret!")
		require.Error(t, err)
		require.ErrorContains(t, err, "connection refused")
		assert.Nil(t, apperr.As(err), "an infrastructure failure must not carry a client-error status")
	})

	t.Run("refresh", func(t *testing.T) {
		_, err := service.Refresh(context.Background(), session.RefreshToken)
		require.Error(t, err)
		require.ErrorContains(t, err, "connection refused")
		assert.Nil(t, apperr.As(err), "an infrastructure failure must not carry a client-error status")
	})
}

/*
TestService_Logout is stateless by design; it simply acknowledges.
*/
func TestService_Logout(t *testing.T) {
	service, _, _ := newService(t)
	assert.NoError(t, service.Logout(context.Background(), "user-1"))
}
