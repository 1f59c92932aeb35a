package security

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncryptor(t *testing.T) *Encryptor {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	encryptor, err := NewEncryptor(key)
	require.NoError(t, err)
	return encryptor
}

func TestEncryptor_SealOpen(t *testing.T) {
	encryptor := newTestEncryptor(t)

	testCases := []struct {
		name      string
		plaintext []byte
	}{
		{name: "user bucket", plaintext: []byte(`{"profile":{"age":42,"conditions":["Asthma"]},"consultations":[]}`)},
		{name: "empty", plaintext: []byte{}},
		{name: "unicode", plaintext: []byte("Fejfájás és láz")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sealed, err := encryptor.Seal(tc.plaintext)
			require.NoError(t, err)
			assert.NotEqual(t, tc.plaintext, sealed)

			opened, err := encryptor.Open(sealed)
			require.NoError(t, err)
			assert.Equal(t, string(tc.plaintext), string(opened))
		})
	}
}

func TestEncryptor_InvalidKey(t *testing.T) {
	testCases := []struct {
		name    string
		keySize int
	}{
		{name: "too short", keySize: 16},
		{name: "too long", keySize: 64},
		{name: "empty", keySize: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEncryptor(make([]byte, tc.keySize))
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "encryption key must be 32 bytes")
		})
	}
}

func TestNewEncryptorFromBase64(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	_, err = NewEncryptorFromBase64(base64.StdEncoding.EncodeToString(key))
	assert.NoError(t, err)

	_, err = NewEncryptorFromBase64("not base64!!")
	assert.Error(t, err)
}

func TestEncryptor_DifferentCiphertexts(t *testing.T) {
	encryptor := newTestEncryptor(t)
	plaintext := []byte("sensitive health data")

	first, err := encryptor.Seal(plaintext)
	require.NoError(t, err)
	second, err := encryptor.Seal(plaintext)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "encrypting the same plaintext should produce different ciphertexts")
}

func TestEncryptor_InvalidCiphertext(t *testing.T) {
	encryptor := newTestEncryptor(t)

	testCases := []struct {
		name       string
		ciphertext []byte
	}{
		{name: "too short", ciphertext: []byte("abc")},
		{name: "corrupted data", ciphertext: []byte("abcdefghijklmnopqrstuvwxyz0123456789")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := encryptor.Open(tc.ciphertext)
			assert.Error(t, err)
		})
	}
}
