package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeterministicCipher(t *testing.T) *DeterministicCipher {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := NewDeterministic(key)
	require.NoError(t, err)
	return cipher
}

func TestNewDeterministic_InvalidKeySize(t *testing.T) {
	_, err := NewDeterministic(make([]byte, 16))
	assert.Error(t, err)
}

func TestDeterministicCipher_SameInputSameOutput(t *testing.T) {
	cipher := newDeterministicCipher(t)
	plaintext := []byte("Doe")
	aad := []byte("patient.last_name")

	ct1, nonce1, err := cipher.Encrypt(plaintext, aad)
	require.NoError(t, err)
	ct2, nonce2, err := cipher.Encrypt(plaintext, aad)
	require.NoError(t, err)

	assert.Equal(t, ct1, ct2, "identical plaintexts must seal to identical ciphertext")
	assert.Equal(t, nonce1, nonce2)
}

func TestDeterministicCipher_DifferentInputsDiffer(t *testing.T) {
	cipher := newDeterministicCipher(t)
	aad := []byte("patient.last_name")

	ct1, _, err := cipher.Encrypt([]byte("Doe"), aad)
	require.NoError(t, err)
	ct2, _, err := cipher.Encrypt([]byte("doe"), aad)
	require.NoError(t, err)

	assert.NotEqual(t, ct1, ct2, "case-differing plaintexts must not collide")
}

func TestDeterministicCipher_DifferentKeysDiffer(t *testing.T) {
	cipher1 := newDeterministicCipher(t)
	cipher2 := newDeterministicCipher(t)
	plaintext := []byte("Doe")
	aad := []byte("patient.last_name")

	ct1, _, err := cipher1.Encrypt(plaintext, aad)
	require.NoError(t, err)
	ct2, _, err := cipher2.Encrypt(plaintext, aad)
	require.NoError(t, err)

	assert.NotEqual(t, ct1, ct2)
}

func TestDeterministicCipher_RoundTrip(t *testing.T) {
	cipher := newDeterministicCipher(t)
	plaintext := []byte("jane.doe@example.com")
	aad := []byte("patient.email")

	ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
	require.NoError(t, err)

	decrypted, err := cipher.Decrypt(ciphertext, nonce, aad)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDeterministicCipher_TamperedCiphertextFails(t *testing.T) {
	cipher := newDeterministicCipher(t)
	aad := []byte("patient.email")

	ciphertext, nonce, err := cipher.Encrypt([]byte("jane.doe@example.com"), aad)
	require.NoError(t, err)

	ciphertext[0] ^= 0xff
	_, err = cipher.Decrypt(ciphertext, nonce, aad)
	assert.Error(t, err)
}

func TestDeterministicCipher_SwappedNonceFails(t *testing.T) {
	cipher := newDeterministicCipher(t)
	aad := []byte("patient.email")

	ct1, _, err := cipher.Encrypt([]byte("a@example.com"), aad)
	require.NoError(t, err)
	_, nonce2, err := cipher.Encrypt([]byte("b@example.com"), aad)
	require.NoError(t, err)

	_, err = cipher.Decrypt(ct1, nonce2, aad)
	assert.Error(t, err)
}

func TestDeterministicCipher_AADMismatchFails(t *testing.T) {
	cipher := newDeterministicCipher(t)

	ciphertext, nonce, err := cipher.Encrypt([]byte("Doe"), []byte("patient.last_name"))
	require.NoError(t, err)

	_, err = cipher.Decrypt(ciphertext, nonce, []byte("patient.email"))
	assert.Error(t, err)
}
