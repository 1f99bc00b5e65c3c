package usecase

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	cryptoDomain "github.com/mrlynn/securehealth-sub006/internal/crypto/domain"
	cryptoService "github.com/mrlynn/securehealth-sub006/internal/crypto/service"
	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
)

// keyVault implements the KeyVault interface.
type keyVault struct {
	dekRepo   DekRepository
	wrapper   cryptoService.KeyWrapper
	algorithm cryptoDomain.Algorithm
	group     singleflight.Group

	mu     sync.RWMutex
	cache  map[string]*cryptoDomain.KeyHandle
	closed bool
}

// GetOrCreateKey returns the DEK registered under keyName, creating and
// wrapping a fresh key on first use. Concurrent callers for the same name are
// collapsed onto a single repository round trip; a lost creation race is
// resolved by re-reading the winner's key so all callers converge on the same
// key material.
func (k *keyVault) GetOrCreateKey(ctx context.Context, keyName string) (*cryptoDomain.KeyHandle, error) {
	k.mu.RLock()
	if k.closed {
		k.mu.RUnlock()
		return nil, apperrors.New("key vault is closed")
	}
	if handle, ok := k.cache[keyName]; ok {
		k.mu.RUnlock()
		return handle, nil
	}
	k.mu.RUnlock()

	result, err, _ := k.group.Do(keyName, func() (any, error) {
		// Another flight may have populated the cache while we waited.
		k.mu.RLock()
		handle, ok := k.cache[keyName]
		k.mu.RUnlock()
		if ok {
			return handle, nil
		}

		handle, err := k.resolveKey(ctx, keyName)
		if err != nil {
			return nil, err
		}

		k.mu.Lock()
		if k.closed {
			k.mu.Unlock()
			cryptoDomain.Zero(handle.Key)
			return nil, apperrors.New("key vault is closed")
		}
		k.cache[keyName] = handle
		k.mu.Unlock()

		return handle, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*cryptoDomain.KeyHandle), nil
}

// resolveKey loads an existing DEK or creates a new one under keyName.
func (k *keyVault) resolveKey(ctx context.Context, keyName string) (*cryptoDomain.KeyHandle, error) {
	dek, err := k.dekRepo.GetByName(ctx, keyName)
	if err == nil {
		return k.unwrapDek(ctx, dek)
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	dek, err = k.createDek(ctx, keyName)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		// Lost the creation race. Converge on the stored key.
		dek, err = k.dekRepo.GetByName(ctx, keyName)
		if err != nil {
			return nil, err
		}
	}

	return k.unwrapDek(ctx, dek)
}

// createDek generates fresh key material, wraps it, and persists the DEK.
func (k *keyVault) createDek(ctx context.Context, keyName string) (*cryptoDomain.Dek, error) {
	key := make([]byte, cryptoDomain.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate DEK material")
	}
	defer cryptoDomain.Zero(key)

	encrypted, nonce, masterKeyID, err := k.wrapper.Wrap(ctx, key)
	if err != nil {
		return nil, err
	}

	dek := &cryptoDomain.Dek{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         keyName,
		MasterKeyID:  masterKeyID,
		Algorithm:    k.algorithm,
		EncryptedKey: encrypted,
		Nonce:        nonce,
		CreatedAt:    time.Now().UTC(),
	}

	if err := k.dekRepo.Create(ctx, dek); err != nil {
		return nil, err
	}

	return dek, nil
}

// unwrapDek recovers the plaintext key material for a stored DEK.
func (k *keyVault) unwrapDek(ctx context.Context, dek *cryptoDomain.Dek) (*cryptoDomain.KeyHandle, error) {
	key, err := k.wrapper.Unwrap(ctx, dek)
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.KeyHandle{
		ID:   dek.ID,
		Name: dek.Name,
		Key:  key,
	}, nil
}

// Close zeroes all cached key material and marks the vault unusable.
func (k *keyVault) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return
	}
	k.closed = true
	for name, handle := range k.cache {
		cryptoDomain.Zero(handle.Key)
		delete(k.cache, name)
	}
}

// NewKeyVault creates a new key vault instance with the provided dependencies.
func NewKeyVault(
	dekRepo DekRepository,
	wrapper cryptoService.KeyWrapper,
	algorithm cryptoDomain.Algorithm,
) KeyVault {
	return &keyVault{
		dekRepo:   dekRepo,
		wrapper:   wrapper,
		algorithm: algorithm,
		cache:     make(map[string]*cryptoDomain.KeyHandle),
	}
}
