package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("abcdef", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "abcdef", hash)

	assert.True(t, VerifyPassword(hash, "abcdef"))
	assert.False(t, VerifyPassword(hash, "abcdeg"))
	assert.False(t, VerifyPassword("not-a-hash", "abcdef"))
}
