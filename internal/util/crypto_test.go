package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateNonce(t *testing.T) {
	t.Run("returns 64 hex characters", func(t *testing.T) {
		nonce, err := GenerateNonce()
		require.NoError(t, err)
		assert.Len(t, nonce, 64)
		assert.Regexp(t, "^[0-9a-f]+$", nonce)
	})

	t.Run("generates unique values", func(t *testing.T) {
		a, err := GenerateNonce()
		require.NoError(t, err)
		b, err := GenerateNonce()
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}

func TestPasswordHashing(t *testing.T) {
	t.Run("hash verifies with correct password", func(t *testing.T) {
		hash, err := HashPassword("longenough1", bcrypt.MinCost)
		require.NoError(t, err)

		assert.True(t, CheckPasswordHash("longenough1", hash))
		assert.False(t, CheckPasswordHash("wrongpassword", hash))
	})

	t.Run("hashes are salted", func(t *testing.T) {
		h1, err := HashPassword("longenough1", bcrypt.MinCost)
		require.NoError(t, err)
		h2, err := HashPassword("longenough1", bcrypt.MinCost)
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
	})
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, ConstantTimeEqual("abc", "abc"))
	assert.False(t, ConstantTimeEqual("abc", "abd"))
	assert.False(t, ConstantTimeEqual("abc", "abcd"))
}

func TestHmacSHA256(t *testing.T) {
	t.Run("is deterministic per secret", func(t *testing.T) {
		a := HmacSHA256("secret", "payload")
		b := HmacSHA256("secret", "payload")
		c := HmacSHA256("other", "payload")

		assert.Equal(t, a, b)
		assert.NotEqual(t, a, c)
		assert.Len(t, a, 64)
	})
}
