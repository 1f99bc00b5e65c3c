package domain

import "context"

// KMSKeeper abstracts a KMS-backed key wrapper (gocloud.dev *secrets.Keeper
// implements it). Used to wrap DEKs when KMS_KEY_URI is configured instead of
// a local master key chain.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
