package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashIsSaltedAndVerifies(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	first, err := h.Hash("Password123")
	require.NoError(t, err)
	second, err := h.Hash("Password123")
	require.NoError(t, err)

	assert.NotEqual(t, "Password123", first)
	assert.NotEqual(t, first, second)

	ok, err := h.Verify("Password123", first)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("Password123", second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPasswordHasher_WrongPassword(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	hash, err := h.Hash("Password123")
	require.NoError(t, err)

	ok, err := h.Verify("Password124", hash)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_CorruptedHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	for _, hash := range []string{"", "plaintext", "$9z$10$abcdefghijklmnopqrstuv"} {
		ok, err := h.Verify("Password123", hash)
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrCorruptedHash, "hash %q", hash)
	}
}

func TestNewPasswordHasher_DefaultsOutOfRangeCost(t *testing.T) {
	assert.Equal(t, DefaultPasswordCost, NewPasswordHasher(0).cost)
	assert.Equal(t, DefaultPasswordCost, NewPasswordHasher(99).cost)
	assert.Equal(t, bcrypt.MinCost, NewPasswordHasher(bcrypt.MinCost).cost)
}
