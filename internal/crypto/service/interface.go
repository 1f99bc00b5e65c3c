// Package service provides the cryptographic primitives behind field-level
// encryption: AEAD ciphers for random-treatment fields, a deterministic cipher
// for equality-searchable fields, and DEK wrapping under a master key or KMS.
package service

import (
	"context"

	cryptoDomain "github.com/mrlynn/securehealth-sub006/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// DeterministicAEAD encrypts such that equal (plaintext, key, aad) inputs
// always produce identical ciphertext and nonce bytes. Required for encrypted
// equality search; it necessarily leaks value-equality patterns, so it is only
// used for fields whose policy treatment is Deterministic.
type DeterministicAEAD interface {
	AEAD
}

// AEADManager defines the interface for creating cipher instances.
type AEADManager interface {
	// CreateCipher creates a randomized AEAD cipher for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)

	// CreateDeterministicCipher creates a deterministic cipher from the key.
	CreateDeterministicCipher(key []byte) (DeterministicAEAD, error)
}

// KeyWrapper wraps and unwraps DEK material. Implementations exist for a local
// master key chain and for a gocloud.dev KMS keeper; exactly one is active per
// process, selected at startup.
type KeyWrapper interface {
	// Wrap encrypts plaintext DEK material. Returns the wrapped key, the nonce
	// used (empty for KMS keepers), and the identifier of the wrapping key.
	Wrap(ctx context.Context, key []byte) (encrypted, nonce []byte, masterKeyID string, err error)

	// Unwrap recovers the plaintext DEK material from a stored DEK. The caller
	// owns the returned bytes and must zero them after use.
	Unwrap(ctx context.Context, dek *cryptoDomain.Dek) ([]byte, error)
}
