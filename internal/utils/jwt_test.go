package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(7, "p@x.com", "participant", "secret")
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "p@x.com", claims.Email)
	assert.Equal(t, "participant", claims.Role)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := GenerateJWT(7, "p@x.com", "participant", "secret")
	require.NoError(t, err)

	_, err = ParseJWT(token, "other-secret")
	require.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	_, err := ParseJWT("not-a-token", "secret")
	require.Error(t, err)
}
