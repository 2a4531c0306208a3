package cipher_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-scheduler/infrastructure/cipher"
)

func TestNew_EmptyKeyRejected(t *testing.T) {
	_, err := cipher.New("")
	require.Error(t, err)
}

func TestTokenCipher_RoundTrip(t *testing.T) {
	c, err := cipher.New("unit-test-key")
	require.NoError(t, err)

	cases := []string{
		"",
		"a",
		"ya29.A0ARrdaM-short-token",
		strings.Repeat("x", 4096), // longest token any platform issues
		"token with spaces and ünïcödé ✓",
		string([]byte{0x00, 0x01, 0xff, 0xfe}),
	}
	for _, plaintext := range cases {
		ct, err := c.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, ct)

		got, err := c.Decrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestTokenCipher_NonDeterministicCiphertext(t *testing.T) {
	c, err := cipher.New("unit-test-key")
	require.NoError(t, err)

	a, err := c.Encrypt("same plaintext")
	require.NoError(t, err)
	b, err := c.Encrypt("same plaintext")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenCipher_WrongKeyFails(t *testing.T) {
	c1, err := cipher.New("key-one")
	require.NoError(t, err)
	c2, err := cipher.New("key-two")
	require.NoError(t, err)

	ct, err := c1.Encrypt("secret")
	require.NoError(t, err)
	_, err = c2.Decrypt(ct)
	require.Error(t, err)
}

func TestTokenCipher_GarbageCiphertextFails(t *testing.T) {
	c, err := cipher.New("unit-test-key")
	require.NoError(t, err)

	_, err = c.Decrypt("not base64 !!!")
	require.Error(t, err)
	_, err = c.Decrypt("YWJj") // valid base64, shorter than a nonce
	require.Error(t, err)
}
