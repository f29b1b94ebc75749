package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret!", hash)
	assert.True(t, IsHashed(hash))

	ok, err := ComparePassword(hash, "s3cret!")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ComparePassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_LengthBound(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", MaxPasswordBytes))
	require.NoError(t, err)

	_, err = HashPassword(strings.Repeat("x", MaxPasswordBytes+1))
	require.Error(t, err)
}

func TestComparePassword_MalformedHash(t *testing.T) {
	ok, err := ComparePassword("plain-text", "plain-text")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestIsHashed(t *testing.T) {
	assert.False(t, IsHashed(""))
	assert.False(t, IsHashed("hunter2"))
	assert.False(t, IsHashed("$2a$"))
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, ConstantTimeEqual("abc", "abc"))
	assert.False(t, ConstantTimeEqual("abc", "abd"))
	assert.False(t, ConstantTimeEqual("abc", "abcd"))
	assert.False(t, ConstantTimeEqual("", ""))
	assert.False(t, ConstantTimeEqual("abc", ""))
}
