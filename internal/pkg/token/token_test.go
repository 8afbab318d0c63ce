package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpiresAtReadsExpClaim(t *testing.T) {
	exp := time.Now().Add(45 * time.Minute).Truncate(time.Second)
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key"))
	require.NoError(t, err)

	got, ok := ExpiresAt(raw)
	require.True(t, ok)
	assert.Equal(t, exp.Unix(), got.Unix())
}

func TestExpiresAtWithoutExpClaim(t *testing.T) {
	claims := jwt.RegisteredClaims{Subject: "user-1"}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key"))
	require.NoError(t, err)

	_, ok := ExpiresAt(raw)
	assert.False(t, ok)
}

func TestExpiresAtOpaqueToken(t *testing.T) {
	for _, raw := range []string{"", "opaque-session-token", "a.b", "not a jwt at all"} {
		_, ok := ExpiresAt(raw)
		assert.False(t, ok, "token %q", raw)
	}
}
