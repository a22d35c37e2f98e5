package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService(t *testing.T) {
	service, err := NewTokenService()
	require.NoError(t, err)

	t.Run("generated token verifies", func(t *testing.T) {
		plain, hashed, err := service.GenerateToken()
		require.NoError(t, err)
		assert.NotEmpty(t, plain)
		assert.True(t, strings.HasPrefix(hashed, "$argon2id$"))
		assert.True(t, service.VerifyToken(plain, hashed))
		assert.True(t, service.VerifyToken(plain, hashed))
	})

	t.Run("hashes are salted", func(t *testing.T) {
		first, err := service.HashToken("admin-token")
		require.NoError(t, err)
		second, err := service.HashToken("admin-token")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
		assert.True(t, service.VerifyToken("admin-token", first))
		assert.True(t, service.VerifyToken("admin-token", second))
	})

	t.Run("rejects mismatches", func(t *testing.T) {
		hashed, err := service.HashToken("admin-token")
		require.NoError(t, err)
		assert.False(t, service.VerifyToken("other-token", hashed))
		assert.False(t, service.VerifyToken("", hashed))
		assert.False(t, service.VerifyToken("admin-token", ""))
		assert.False(t, service.VerifyToken("admin-token", "not-a-phc-string"))
	})
}
