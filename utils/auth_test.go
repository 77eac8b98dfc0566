package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	JwtKey = []byte("test-secret")

	token, err := GenerateJWT("admin@citylab.example", "labadmin", "66f1a2b3c4d5e6f7a8b9c0d1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@citylab.example", claims.Email)
	assert.Equal(t, "labadmin", claims.Role)
	assert.Equal(t, "66f1a2b3c4d5e6f7a8b9c0d1", claims.LabID)
}

func TestParseJWTRejectsTampered(t *testing.T) {
	JwtKey = []byte("test-secret")

	token, err := GenerateJWT("user@example.com", "user", "")
	require.NoError(t, err)

	_, err = ParseJWT(token + "x")
	assert.Error(t, err)

	JwtKey = []byte("different-secret")
	_, err = ParseJWT(token)
	assert.Error(t, err)
}
