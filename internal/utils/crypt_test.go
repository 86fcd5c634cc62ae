package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhoneCipherRoundTrip(t *testing.T) {
	cipher, err := NewPhoneCipher("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	encrypted, err := cipher.Encrypt("+15551234567")
	require.NoError(t, err)
	assert.NotEqual(t, "+15551234567", encrypted)

	decrypted, err := cipher.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", decrypted)
}

func TestPhoneCipherNonceVaries(t *testing.T) {
	cipher, err := NewPhoneCipher("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	first, err := cipher.Encrypt("+15551234567")
	require.NoError(t, err)
	second, err := cipher.Encrypt("+15551234567")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestPhoneCipherRejectsBadKey(t *testing.T) {
	_, err := NewPhoneCipher("too-short")
	assert.Error(t, err)
}

func TestPhoneCipherRejectsTamperedCiphertext(t *testing.T) {
	cipher, err := NewPhoneCipher("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	_, err = cipher.Decrypt("not-base64!!")
	assert.Error(t, err)

	_, err = cipher.Decrypt("c2hvcnQ=")
	assert.Error(t, err)

	other, err := NewPhoneCipher("abcdef0123456789abcdef0123456789")
	require.NoError(t, err)
	encrypted, err := other.Encrypt("+15551234567")
	require.NoError(t, err)

	_, err = cipher.Decrypt(encrypted)
	assert.Error(t, err)
}
