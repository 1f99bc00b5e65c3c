package service

import (
	"context"
	"fmt"

	cryptoDomain "github.com/mrlynn/securehealth-sub006/internal/crypto/domain"
)

// MasterKeyWrapper implements KeyWrapper using a local master key chain. New
// DEKs are wrapped with the active master key; unwrapping uses whichever chain
// key the DEK records, so rotation does not break existing DEKs.
type MasterKeyWrapper struct {
	chain       *cryptoDomain.MasterKeyChain
	aeadManager AEADManager
	algorithm   cryptoDomain.Algorithm
}

// NewMasterKeyWrapper creates a KeyWrapper backed by the master key chain.
func NewMasterKeyWrapper(
	chain *cryptoDomain.MasterKeyChain,
	aeadManager AEADManager,
	algorithm cryptoDomain.Algorithm,
) *MasterKeyWrapper {
	return &MasterKeyWrapper{
		chain:       chain,
		aeadManager: aeadManager,
		algorithm:   algorithm,
	}
}

// Wrap encrypts the DEK material with the active master key.
func (w *MasterKeyWrapper) Wrap(
	_ context.Context,
	key []byte,
) (encrypted, nonce []byte, masterKeyID string, err error) {
	activeID := w.chain.ActiveMasterKeyID()
	masterKey, found := w.chain.Get(activeID)
	if !found {
		return nil, nil, "", cryptoDomain.ErrActiveMasterKeyNotFound
	}

	aead, err := w.aeadManager.CreateCipher(masterKey.Key, w.algorithm)
	if err != nil {
		return nil, nil, "", err
	}

	encrypted, nonce, err = aead.Encrypt(key, []byte(activeID))
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to wrap DEK: %w", err)
	}

	return encrypted, nonce, activeID, nil
}

// Unwrap decrypts the stored DEK with the master key that wrapped it.
func (w *MasterKeyWrapper) Unwrap(_ context.Context, dek *cryptoDomain.Dek) ([]byte, error) {
	masterKey, found := w.chain.Get(dek.MasterKeyID)
	if !found {
		return nil, fmt.Errorf("%w: master key %s", cryptoDomain.ErrMasterKeyInvalid, dek.MasterKeyID)
	}

	aead, err := w.aeadManager.CreateCipher(masterKey.Key, w.algorithm)
	if err != nil {
		return nil, err
	}

	key, err := aead.Decrypt(dek.EncryptedKey, dek.Nonce, []byte(dek.MasterKeyID))
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return key, nil
}

// KeeperWrapper implements KeyWrapper using a gocloud.dev KMS keeper. The
// keeper manages nonces internally, so the stored nonce is always empty and
// the master key ID records the keeper URI for operational visibility.
type KeeperWrapper struct {
	keeper cryptoDomain.KMSKeeper
	keyURI string
}

// NewKeeperWrapper creates a KeyWrapper backed by a KMS keeper.
func NewKeeperWrapper(keeper cryptoDomain.KMSKeeper, keyURI string) *KeeperWrapper {
	return &KeeperWrapper{keeper: keeper, keyURI: keyURI}
}

// Wrap encrypts the DEK material through the KMS keeper.
func (w *KeeperWrapper) Wrap(
	ctx context.Context,
	key []byte,
) (encrypted, nonce []byte, masterKeyID string, err error) {
	encrypted, err = w.keeper.Encrypt(ctx, key)
	if err != nil {
		return nil, nil, "", fmt.Errorf("%w: %v", cryptoDomain.ErrKeyStoreUnavailable, err)
	}

	return encrypted, nil, w.keyURI, nil
}

// Unwrap decrypts the stored DEK through the KMS keeper.
func (w *KeeperWrapper) Unwrap(ctx context.Context, dek *cryptoDomain.Dek) ([]byte, error) {
	key, err := w.keeper.Decrypt(ctx, dek.EncryptedKey)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return key, nil
}
