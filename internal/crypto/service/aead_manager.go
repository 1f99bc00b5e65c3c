package service

import (
	cryptoDomain "github.com/mrlynn/securehealth-sub006/internal/crypto/domain"
)

// AEADManagerService implements the AEADManager interface for creating cipher instances.
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManagerService.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher creates a randomized AEAD cipher instance for the specified algorithm.
// Returns ErrInvalidKeySize if key is not 32 bytes or ErrUnsupportedAlgorithm if
// the algorithm is unknown.
func (am *AEADManagerService) CreateCipher(
	key []byte,
	alg cryptoDomain.Algorithm,
) (AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	switch alg {
	case cryptoDomain.AESGCM:
		return NewAESGCM(key)
	case cryptoDomain.ChaCha20:
		return NewChaCha20Poly1305(key)
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
}

// CreateDeterministicCipher creates a deterministic cipher from the key.
// Deterministic encryption is always AES-256-GCM with an HKDF/HMAC-derived
// nonce; it is not configurable per algorithm because the ciphertext bytes
// must stay stable across configuration changes.
func (am *AEADManagerService) CreateDeterministicCipher(key []byte) (DeterministicAEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	return NewDeterministic(key)
}
