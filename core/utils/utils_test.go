package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestGenerateReferenceCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := GenerateReferenceCode()
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(code, "SW-"), code)
		assert.Len(t, code, 11)
		assert.False(t, seen[code], "duplicate reference %s", code)
		seen[code] = true
	}
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	assert.Len(t, id, 7)
	assert.NotEqual(t, id, GenerateID())
}
