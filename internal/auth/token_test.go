package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACTokenCodecRoundTrip(t *testing.T) {
	codec, err := NewHMACTokenCodec("test-secret", nil)
	require.NoError(t, err)

	for _, id := range []int64{1, 42, 987654321} {
		token, err := codec.Issue(id)
		require.NoError(t, err)

		got, err := codec.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestHMACTokenCodecTamperedTokenFails(t *testing.T) {
	codec, err := NewHMACTokenCodec("test-secret", nil)
	require.NoError(t, err)

	token, err := codec.Issue(42)
	require.NoError(t, err)

	// Flipping any single character must invalidate the token.
	for i := 0; i < len(token); i++ {
		mutated := []byte(token)
		if mutated[i] == 'x' {
			mutated[i] = 'y'
		} else {
			mutated[i] = 'x'
		}
		_, err := codec.Validate(string(mutated))
		assert.ErrorIs(t, err, ErrInvalidSession, "mutation at index %d", i)
	}
}

func TestHMACTokenCodecRejectsGarbage(t *testing.T) {
	codec, err := NewHMACTokenCodec("test-secret", nil)
	require.NoError(t, err)

	for _, token := range []string{"", "42", "|", "42|", "|deadbeef", "abc|def"} {
		_, err := codec.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidSession, "token=%q", token)
	}
}

func TestHMACTokenCodecWrongSecretFails(t *testing.T) {
	issuer, err := NewHMACTokenCodec("secret-one", nil)
	require.NoError(t, err)
	verifier, err := NewHMACTokenCodec("secret-two", nil)
	require.NoError(t, err)

	token, err := issuer.Issue(7)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestHMACTokenCodecShape(t *testing.T) {
	codec, err := NewHMACTokenCodec("test-secret", nil)
	require.NoError(t, err)

	token, err := codec.Issue(42)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(token, "42|"))

	// sha256 hex is 64 chars
	assert.Len(t, token[strings.LastIndex(token, "|")+1:], 64)
}

func TestHMACTokenCodecRequiresSecret(t *testing.T) {
	_, err := NewHMACTokenCodec("", nil)
	assert.Error(t, err)
}

func TestJWTTokenCodecRoundTrip(t *testing.T) {
	codec, err := NewJWTTokenCodec("test-secret", 0)
	require.NoError(t, err)

	token, err := codec.Issue(42)
	require.NoError(t, err)

	got, err := codec.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)
}

func TestJWTTokenCodecWrongSecretFails(t *testing.T) {
	issuer, err := NewJWTTokenCodec("secret-one", 0)
	require.NoError(t, err)
	verifier, err := NewJWTTokenCodec("secret-two", 0)
	require.NoError(t, err)

	token, err := issuer.Issue(7)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestJWTTokenCodecExpiry(t *testing.T) {
	codec, err := NewJWTTokenCodec("test-secret", time.Nanosecond)
	require.NoError(t, err)

	token, err := codec.Issue(7)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = codec.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}
