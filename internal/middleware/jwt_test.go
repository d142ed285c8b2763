package middleware

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tokenStr, err := GenerateToken(42, "user")
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	token, err := ValidateToken(tokenStr)
	require.NoError(t, err)
	assert.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["user_id"])
	assert.Equal(t, "user", claims["role"])
}

func TestUserIDFromToken(t *testing.T) {
	tokenStr, err := GenerateToken(7, "user")
	require.NoError(t, err)

	id, err := UserIDFromToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
}

func TestUserIDFromToken_Invalid(t *testing.T) {
	_, err := UserIDFromToken("not-a-token")
	assert.Error(t, err)

	// Token signed with a different secret must be rejected.
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 7.0})
	forged, err := other.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	_, err = UserIDFromToken(forged)
	assert.Error(t, err)
}
