package utils

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewBookingCodeFormat(t *testing.T) {
	code, err := NewBookingCode()
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(code, "EX-"))
	body := strings.TrimPrefix(code, "EX-")
	assert.Len(t, body, codeLength)
	for _, r := range body {
		assert.Contains(t, codeAlphabet, string(r))
	}
	// Ambiguous glyphs never appear.
	assert.NotContains(t, body, "0")
	assert.NotContains(t, body, "O")
	assert.NotContains(t, body, "1")
	assert.NotContains(t, body, "I")
}

func TestNewBookingCodeUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := NewBookingCode()
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}

func TestAccessTokenClaims(t *testing.T) {
	at, err := NewAccessToken("test-secret", 42, "user@example.com", "APPLICANT", 15)
	require.NoError(t, err)

	tok, err := jwt.Parse(at.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "user@example.com", claims["email"])
	assert.Equal(t, "APPLICANT", claims["role"])
}

func TestRefreshTokenHashing(t *testing.T) {
	rt, err := NewRefreshToken(7)
	require.NoError(t, err)

	assert.Len(t, rt.Raw, 96)
	// Same input, same hash; the raw token never matches its own hash.
	assert.Equal(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(rt.Raw))
	assert.NotEqual(t, rt.Raw, HashRefreshRaw(rt.Raw))
}
