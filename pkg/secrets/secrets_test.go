package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := NewCipher("top-secret")

	for _, plain := range []string{
		"",
		"k",
		"vmPUZE6mv9SD5VNHk4HlWFsOu6aVGKhlTWVNUjGWLFDKNaWSfpWV",
		strings.Repeat("x", 100),
	} {
		enc, err := c.Encrypt(plain)
		require.NoError(t, err)

		dec, err := c.Decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, plain, dec)
	}
}

func TestEncryptFormat(t *testing.T) {
	c := NewCipher("top-secret")

	enc, err := c.Encrypt("api-key")
	require.NoError(t, err)

	iv, data, ok := strings.Cut(enc, ":")
	require.True(t, ok)
	// 16-byte IV hex encoded, ciphertext in whole AES blocks
	assert.Len(t, iv, 32)
	assert.Equal(t, 0, len(data)%32)
	assert.NotContains(t, enc, "api-key")
}

func TestEncryptUniqueIV(t *testing.T) {
	c := NewCipher("top-secret")

	a, err := c.Encrypt("same")
	require.NoError(t, err)
	b, err := c.Encrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptWrongKey(t *testing.T) {
	enc, err := NewCipher("one").Encrypt("payload-payload-payload")
	require.NoError(t, err)

	dec, err := NewCipher("two").Decrypt(enc)
	if err == nil {
		assert.NotEqual(t, "payload-payload-payload", dec)
	}
}

func TestDecryptMalformed(t *testing.T) {
	c := NewCipher("top-secret")

	for _, enc := range []string{
		"",
		"nocolon",
		"zz:zz",
		"00112233445566778899aabbccddeeff:abc",  // ragged ciphertext
		"0011:00112233445566778899aabbccddeeff", // short IV
	} {
		_, err := c.Decrypt(enc)
		assert.Error(t, err, "input %q", enc)
	}
}
