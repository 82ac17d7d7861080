// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("superadmin123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	other, err := HashPassword("superadmin123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)

	ok, err := VerifyPassword("superadmin123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("superadmin124", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("x", "plaintext")
	assert.Error(t, err)

	_, err = VerifyPassword("x", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA")
	assert.Error(t, err)
}

func TestTimingSafeWithoutHash(t *testing.T) {
	ok, rehash, err := VerifyPasswordTimingSafe("anything", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, rehash)

	empty := ""
	ok, _, err = VerifyPasswordTimingSafe("anything", &empty)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRehashOnWeakerParams(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	weaker := strings.Replace(hash, "t=1", "t=2", 1)
	assert.True(t, needsRehash(weaker))
	assert.False(t, needsRehash(hash))
}
