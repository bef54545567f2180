package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHasher_SHA256MatchesStoredRows(t *testing.T) {
	h := NewPasswordHasher(HashSHA256)

	hash, err := h.Hash("abc")
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hash)

	assert.True(t, h.Verify("abc", hash))
	assert.True(t, h.Verify("abc", strings.ToUpper(hash)+" "))
	assert.False(t, h.Verify("abd", hash))
	assert.False(t, h.Verify("abc", ""))
}

func TestPasswordHasher_BcryptVerifiesBothSchemes(t *testing.T) {
	h := NewPasswordHasher(HashBcrypt)

	hash, err := h.Hash("secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
	assert.True(t, h.Verify("secret", hash))
	assert.False(t, h.Verify("Secret", hash))

	legacy, _ := NewPasswordHasher(HashSHA256).Hash("secret")
	assert.True(t, h.Verify("secret", legacy), "sha256 rows keep working after switching to bcrypt")
}

func TestNewPasswordHasher_UnknownSchemeFallsBackToSHA256(t *testing.T) {
	hash, err := NewPasswordHasher("md5").Hash("abc")
	require.NoError(t, err)
	assert.Len(t, hash, 64)
}
