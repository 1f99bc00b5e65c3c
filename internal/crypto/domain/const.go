// Package domain defines the core cryptographic domain models for the key vault.
//
// The vault implements a two-tier key hierarchy: Master Key → DEK → Field data.
// Each protected record field is encrypted with a named Data Encryption Key
// (DEK); DEKs are stored wrapped, either under a local master key or under a
// KMS-managed key. All supported ciphers are AEADs with 256-bit keys.
package domain

import "fmt"

// Algorithm represents the cryptographic algorithm used for encryption.
//
// Algorithm selection guidelines:
//   - Use AESGCM on modern CPUs with AES-NI hardware acceleration
//   - Use ChaCha20 on systems without AES-NI
//   - Both provide equivalent 256-bit security when used correctly
type Algorithm string

const (
	// AESGCM represents the AES-256-GCM authenticated encryption algorithm.
	// 256-bit key, 12-byte nonce, 16-byte authentication tag.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 represents the ChaCha20-Poly1305 authenticated encryption algorithm.
	// 256-bit key, 12-byte nonce, 16-byte authentication tag, constant-time
	// without hardware support.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KeySize is the required key length in bytes for every key in the hierarchy.
const KeySize = 32

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AESGCM:
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
	}
}
