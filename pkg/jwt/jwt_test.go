package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	m, err := NewManager("secret", "vreels", time.Minute)
	require.NoError(t, err)

	token, exp, err := m.GenerateAccessToken("u1", "alice", []string{"admin"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []string{"admin"}, claims.Roles)
}

func TestValidateRejects(t *testing.T) {
	m, err := NewManager("secret", "vreels", time.Minute)
	require.NoError(t, err)

	other, err := NewManager("other", "vreels", time.Minute)
	require.NoError(t, err)
	forged, _, err := other.GenerateAccessToken("u1", "alice", nil)
	require.NoError(t, err)
	_, err = m.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer, err := NewManager("secret", "someone-else", time.Minute)
	require.NoError(t, err)
	token, _, err := wrongIssuer.GenerateAccessToken("u1", "alice", nil)
	require.NoError(t, err)
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	m, err := NewManager("secret", "", time.Minute)
	require.NoError(t, err)

	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Type: TokenTypeAccess,
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestSubjectFallbackAndType(t *testing.T) {
	m, err := NewManager("secret", "", time.Minute)
	require.NoError(t, err)

	sign := func(c *Claims) string {
		s, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, c).SignedString([]byte("secret"))
		require.NoError(t, err)
		return s
	}

	claims, err := m.ValidateToken(sign(&Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "u9"},
		Type:             TokenTypeAccess,
	}))
	require.NoError(t, err)
	assert.Equal(t, "u9", claims.UserID)

	_, err = m.ValidateToken(sign(&Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: "u9"},
		Type:             "refresh",
	}))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("", "", 0)
	assert.ErrorIs(t, err, ErrMissingKey)
}
