package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret")

	token, err := m.GenerateAccessToken(7, "admin@storypixie.app", "owner")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin@storypixie.app", claims.Email)
	assert.Equal(t, "owner", claims.Role)
	assert.Equal(t, ScopeFull, claims.Scope)
}

func TestPendingTokenScope(t *testing.T) {
	m := NewTokenManager("test-secret")

	token, err := m.GeneratePendingToken(7, "admin@storypixie.app", "owner")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, ScopeTwoFactorPending, claims.Scope)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a").GenerateAccessToken(1, "a@b.c", "admin")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenGarbage(t *testing.T) {
	m := NewTokenManager("test-secret")

	_, err := m.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
