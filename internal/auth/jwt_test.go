package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, time.Hour)

	token, err := svc.GenerateToken("ann")
	require.NoError(t, err)

	username, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ann", username)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, time.Hour)

	expired, err := NewJWTService("secret", -time.Minute, time.Hour).GenerateToken("ann")
	require.NoError(t, err)
	otherKey, err := NewJWTService("other", time.Hour, time.Hour).GenerateToken("ann")
	require.NoError(t, err)
	reset, err := svc.GenerateResetToken("ann@x.io", "fp")
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Username:         "ann",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Username: "ann"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":         expired,
		"wrong key":       otherKey,
		"reset token":     reset,
		"wrong algorithm": hs512,
		"missing expiry":  noExpiry,
		"garbage":         "not.a.token",
		"empty":           "",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestResetToken(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, time.Hour)

	token, err := svc.GenerateResetToken("ann@x.io", "abc")
	require.NoError(t, err)

	email, fp, err := svc.ValidateResetToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.io", email)
	assert.Equal(t, "abc", fp)

	session, err := svc.GenerateToken("ann")
	require.NoError(t, err)
	_, _, err = svc.ValidateResetToken(session)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
