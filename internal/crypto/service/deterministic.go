package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// detInfoEnc and detInfoNonce isolate the two keys derived from one DEK.
const (
	detInfoEnc   = "securehealth-deterministic-enc"
	detInfoNonce = "securehealth-deterministic-nonce"
)

// DeterministicCipher implements DeterministicAEAD using AES-256-GCM with a
// synthetic nonce.
//
// Two independent 32-byte keys are derived from the DEK via HKDF-SHA256: an
// encryption key and a nonce key. The nonce for each message is
// HMAC-SHA256(nonceKey, aad || plaintext) truncated to the GCM nonce size, so
// equal (plaintext, DEK, aad) triples always seal to identical bytes. This is
// what makes server-side equality filters on ciphertext possible; it also
// means value-equality is visible to the store, which is the documented price
// of the Deterministic treatment.
//
// Nonce reuse across distinct plaintexts cannot occur because the nonce is a
// PRF of the full message. Instances are stateless and safe for concurrent use.
type DeterministicCipher struct {
	aead     cipher.AEAD
	nonceKey []byte
}

// NewDeterministic creates a deterministic cipher from a 32-byte DEK.
func NewDeterministic(key []byte) (*DeterministicCipher, error) {
	if len(key) != 32 {
		return nil, errors.New("key must be exactly 32 bytes")
	}

	encKey, err := deriveKey(key, detInfoEnc)
	if err != nil {
		return nil, err
	}
	nonceKey, err := deriveKey(key, detInfoNonce)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &DeterministicCipher{aead: aead, nonceKey: nonceKey}, nil
}

// Encrypt seals plaintext under a nonce derived from the message itself.
// The returned (ciphertext, nonce) pair is a pure function of
// (plaintext, key, aad).
func (d *DeterministicCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = d.deriveNonce(plaintext, aad)
	ciphertext = d.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt opens ciphertext with the stored nonce and verifies that the nonce
// matches the one the plaintext would derive, rejecting blobs whose nonce was
// swapped between messages.
func (d *DeterministicCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	plaintext, err := d.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	expected := d.deriveNonce(plaintext, aad)
	if !hmac.Equal(expected, nonce) {
		return nil, errors.New("failed to decrypt: nonce does not match plaintext")
	}

	return plaintext, nil
}

// deriveNonce computes the synthetic nonce for a message.
func (d *DeterministicCipher) deriveNonce(plaintext, aad []byte) []byte {
	mac := hmac.New(sha256.New, d.nonceKey)
	mac.Write(aad)
	mac.Write(plaintext)
	return mac.Sum(nil)[:d.aead.NonceSize()]
}

// deriveKey expands the DEK into an independent subkey for the given purpose.
func deriveKey(key []byte, info string) ([]byte, error) {
	reader := hkdf.New(sha256.New, key, nil, []byte(info))
	out := make([]byte, 32)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return out, nil
}
