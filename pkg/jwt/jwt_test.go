package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(15*time.Minute, time.Hour, "fieldhouse-test")
	require.NoError(t, err)
	return m
}

func TestManager_GenerateAndValidate(t *testing.T) {
	m := newTestManager(t)

	access, refresh, accessExp, refreshExp, err := m.GenerateTokenPair("u1", "u1@example.com", "alice", []string{"user"})
	require.NoError(t, err)
	assert.Greater(t, refreshExp, accessExp)

	claims, err := m.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []string{"user"}, claims.Roles)
	assert.Equal(t, "access", claims.Type)

	claims, err = m.ValidateToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.Type)
}

func TestManager_ValidateRejectsGarbage(t *testing.T) {
	m := newTestManager(t)

	_, err := m.ValidateToken("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)

	// Token signed by a different key.
	other := newTestManager(t)
	access, _, _, _, err := other.GenerateTokenPair("u1", "", "alice", nil)
	require.NoError(t, err)
	_, err = m.ValidateToken(access)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_ValidateRefreshToken(t *testing.T) {
	m := newTestManager(t)

	access, refresh, _, _, err := m.GenerateTokenPair("u1", "u1@example.com", "alice", []string{"user"})
	require.NoError(t, err)

	t.Run("refresh token accepted", func(t *testing.T) {
		claims, err := m.ValidateRefreshToken(refresh)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, "refresh", claims.Type)
	})

	t.Run("access token cannot be used to refresh", func(t *testing.T) {
		_, err := m.ValidateRefreshToken(access)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestManager_Revocation(t *testing.T) {
	m := newTestManager(t)

	access, refresh, _, _, err := m.GenerateTokenPair("u1", "", "alice", nil)
	require.NoError(t, err)

	m.RevokeUserTokens("u1")

	_, err = m.ValidateToken(access)
	require.ErrorIs(t, err, ErrRevokedToken)

	_, err = m.ValidateRefreshToken(refresh)
	require.ErrorIs(t, err, ErrRevokedToken)

	t.Run("other users unaffected", func(t *testing.T) {
		otherAccess, _, _, _, err := m.GenerateTokenPair("u2", "", "bob", nil)
		require.NoError(t, err)
		_, err = m.ValidateToken(otherAccess)
		require.NoError(t, err)
	})

	t.Run("tokens issued after revocation validate", func(t *testing.T) {
		// Issued-at has second precision; step past the revocation second.
		time.Sleep(1100 * time.Millisecond)
		newAccess, _, _, _, err := m.GenerateTokenPair("u1", "", "alice", nil)
		require.NoError(t, err)
		_, err = m.ValidateToken(newAccess)
		require.NoError(t, err)
	})
}
