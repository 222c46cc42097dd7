// Copyright (c) 2026 BrotherhoodLabs. All rights reserved.

// White-box tests: expiry behavior needs control over the service clock,
// which stays unexported.
package sec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *TokenService {
	t.Helper()
	service, err := NewTokenService("access-secret", "refresh-secret", "accessgate.test", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return service
}

/*
TestNewTokenService_RejectsBadSecrets checks the constructor guards:
empty secrets and identical secrets are both refused.
*/
func TestNewTokenService_RejectsBadSecrets(t *testing.T) {
	tests := []struct {
		name    string
		access  string
		refresh string
	}{
		{"empty_access", "", "refresh"},
		{"empty_refresh", "access", ""},
		{"identical_secrets", "same", "same"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenService(tt.access, tt.refresh, "accessgate.test", time.Minute, time.Hour)
			assert.Error(t, err)
		})
	}
}

/*
TestTokenService_RoundTrip issues a pair and verifies each token with its
own verifier, checking the identity claims survive the trip.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTestService(t)

	pair, err := service.IssuePair("user-123", "user@accessgate.com")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	accessClaims, err := service.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", accessClaims.UserID)
	assert.Equal(t, "user@accessgate.com", accessClaims.Email)
	assert.Equal(t, "accessgate.test", accessClaims.Issuer)

	refreshClaims, err := service.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", refreshClaims.UserID)
}

/*
TestTokenService_CrossSecretRejection makes sure a refresh token never
verifies as an access token and vice versa.
*/
func TestTokenService_CrossSecretRejection(t *testing.T) {
	service := newTestService(t)

	pair, err := service.IssuePair("user-123", "user@accessgate.com")
	require.NoError(t, err)

	_, err = service.VerifyAccessToken(pair.RefreshToken)
	assert.Error(t, err)

	_, err = service.VerifyRefreshToken(pair.AccessToken)
	assert.Error(t, err)
}

/*
TestTokenService_Expiry advances the service clock past each TTL and
checks the corresponding token stops verifying.
*/
func TestTokenService_Expiry(t *testing.T) {
	service := newTestService(t)

	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return issuedAt }

	pair, err := service.IssuePair("user-123", "user@accessgate.com")
	require.NoError(t, err)

	// Just inside the access TTL.
	service.now = func() time.Time { return issuedAt.Add(14 * time.Minute) }
	_, err = service.VerifyAccessToken(pair.AccessToken)
	assert.NoError(t, err)

	// Past the access TTL but inside the refresh TTL.
	service.now = func() time.Time { return issuedAt.Add(16 * time.Minute) }
	_, err = service.VerifyAccessToken(pair.AccessToken)
	assert.Error(t, err)
	_, err = service.VerifyRefreshToken(pair.RefreshToken)
	assert.NoError(t, err)

	// Past the refresh TTL too.
	service.now = func() time.Time { return issuedAt.Add(8 * 24 * time.Hour) }
	_, err = service.VerifyRefreshToken(pair.RefreshToken)
	assert.Error(t, err)
}

/*
TestTokenService_TamperedToken flips a payload byte and expects the
signature check to fail.
*/
func TestTokenService_TamperedToken(t *testing.T) {
	service := newTestService(t)

	pair, err := service.IssuePair("user-123", "user@accessgate.com")
	require.NoError(t, err)

	tampered := []byte(pair.AccessToken)
	middle := len(tampered) / 2
	if tampered[middle] == 'a' {
		tampered[middle] = 'b'
	} else {
		tampered[middle] = 'a'
	}

	_, err = service.VerifyAccessToken(string(tampered))
	assert.Error(t, err)
}
