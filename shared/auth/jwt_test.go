package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTAuthenticator_RoundTrip(t *testing.T) {
	a := NewJWTAuthenticator("secret", "identity-admin", "identity", time.Hour)

	token, expiresAt, err := a.GenerateToken("65a1f0c2e4b0a1b2c3d4e5f6", "root")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "65a1f0c2e4b0a1b2c3d4e5f6", claims.Subject)
	assert.Equal(t, "root", claims.UserName)
}

func TestJWTAuthenticator_Rejects(t *testing.T) {
	a := NewJWTAuthenticator("secret", "identity-admin", "identity", time.Hour)
	token, _, err := a.GenerateToken("id", "root")
	require.NoError(t, err)

	tests := []struct {
		name  string
		auth  *JWTAuthenticator
		token string
	}{
		{"wrong secret", NewJWTAuthenticator("other", "identity-admin", "identity", time.Hour), token},
		{"wrong audience", NewJWTAuthenticator("secret", "elsewhere", "identity", time.Hour), token},
		{"wrong issuer", NewJWTAuthenticator("secret", "identity-admin", "someone", time.Hour), token},
		{"garbage", a, "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.auth.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTAuthenticator_Expired(t *testing.T) {
	a := NewJWTAuthenticator("secret", "identity-admin", "identity", time.Minute)
	a.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := a.GenerateToken("id", "root")
	require.NoError(t, err)

	a.now = time.Now
	_, err = a.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
