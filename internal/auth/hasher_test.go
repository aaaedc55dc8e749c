package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACHasherRoundTrip(t *testing.T) {
	h := NewHMACHasher(nil)

	stored, err := h.Hash("correct horse")
	require.NoError(t, err)

	assert.True(t, h.Verify("correct horse", stored))
	assert.False(t, h.Verify("wrong horse", stored))
	assert.False(t, h.Verify("", stored))
}

func TestHMACHasherStoredShape(t *testing.T) {
	h := NewHMACHasher(nil)

	stored, err := h.Hash("pw123")
	require.NoError(t, err)

	digest, salt, ok := splitStored(stored)
	require.True(t, ok)
	assert.NotEmpty(t, digest)
	assert.Len(t, salt, saltLength)
	for _, r := range salt {
		assert.Contains(t, saltAlphabet, string(r))
	}
}

func TestHMACHasherFreshSaltPerCall(t *testing.T) {
	h := NewHMACHasher(nil)

	first, err := h.Hash("same password")
	require.NoError(t, err)
	second, err := h.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same password", first))
	assert.True(t, h.Verify("same password", second))
}

func TestHMACHasherMalformedStored(t *testing.T) {
	h := NewHMACHasher(nil)

	for _, stored := range []string{"", "nosalt", "digest|", "|salt"} {
		assert.False(t, h.Verify("anything", stored), "stored=%q", stored)
	}
}

func TestArgon2HasherRoundTrip(t *testing.T) {
	h := NewArgon2Hasher()

	stored, err := h.Hash("correct horse")
	require.NoError(t, err)
	require.True(t, strings.Contains(stored, "|"))

	assert.True(t, h.Verify("correct horse", stored))
	assert.False(t, h.Verify("wrong horse", stored))
}

func TestArgon2HasherFreshSaltPerCall(t *testing.T) {
	h := NewArgon2Hasher()

	first, err := h.Hash("same password")
	require.NoError(t, err)
	second, err := h.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("same password", first))
	assert.True(t, h.Verify("same password", second))
}

func TestHashersAreNotInterchangeable(t *testing.T) {
	hmacHasher := NewHMACHasher(nil)
	argonHasher := NewArgon2Hasher()

	stored, err := hmacHasher.Hash("pw123")
	require.NoError(t, err)

	assert.False(t, argonHasher.Verify("pw123", stored))
}
