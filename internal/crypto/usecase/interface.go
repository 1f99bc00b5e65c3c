// Package usecase defines the interfaces and implementations for data
// encryption key management. The key vault hands out named DEKs to the field
// codec, creating and wrapping keys on first use and caching unwrapped key
// material for the lifetime of the process.
package usecase

import (
	"context"

	cryptoDomain "github.com/mrlynn/securehealth-sub006/internal/crypto/domain"
)

// DekRepository defines the interface for Data Encryption Key persistence.
//
// Keys are addressed by their logical name (e.g. "patient_ssn_key"), which
// must be unique. Create returns apperrors.ErrConflict when a key with the
// same name already exists, which the key vault relies on to converge
// concurrent first-use creations onto a single stored key.
type DekRepository interface {
	Create(ctx context.Context, dek *cryptoDomain.Dek) error
	GetByName(ctx context.Context, name string) (*cryptoDomain.Dek, error)
	List(ctx context.Context, offset, limit int) ([]*cryptoDomain.Dek, error)
}

// KeyVault defines the interface for resolving named DEKs.
//
// Security Note: the returned KeyHandle contains plaintext key material that
// is cached and shared across callers. Callers must NOT zero or mutate the
// Key bytes; the vault owns them until Close.
type KeyVault interface {
	// GetOrCreateKey returns the DEK registered under keyName, creating and
	// wrapping a fresh key if none exists yet. Repeated calls with the same
	// name return the same key material.
	GetOrCreateKey(ctx context.Context, keyName string) (*cryptoDomain.KeyHandle, error)

	// Close zeroes all cached key material. The vault must not be used after.
	Close()
}
