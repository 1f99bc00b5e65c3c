package domain

import (
	"github.com/mrlynn/securehealth-sub006/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors to
// provide context for cryptographic failures.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is
	// not supported. Supported: AESGCM (AES-256-GCM), ChaCha20 (ChaCha20-Poly1305).
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the cryptographic key size is invalid. All
	// keys in the hierarchy must be exactly 32 bytes (256 bits).
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates a decryption operation failed: wrong key,
	// tampered ciphertext (authentication failure), or corrupted data. The
	// specific cause is deliberately not disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrKeyStoreUnavailable indicates the key vault backing store could not be
	// reached. Operations must abort; there is never a plaintext fallback.
	ErrKeyStoreUnavailable = errors.Wrap(errors.ErrUnavailable, "key store unavailable")

	// ErrKeyNotFound indicates no DEK exists under the requested name.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "key not found")

	// ErrMasterKeyInvalid indicates the configured master key material has the
	// wrong length or format. Fatal at startup, never per-call.
	ErrMasterKeyInvalid = errors.Wrap(errors.ErrInvalidInput, "master key invalid")
)

// Master key chain configuration errors. All of them unwrap to
// ErrMasterKeyInvalid so startup code can refuse to boot on any of them.
var (
	ErrMasterKeysNotSet        = errors.Wrap(ErrMasterKeyInvalid, "MASTER_KEYS not set")
	ErrActiveMasterKeyIDNotSet = errors.Wrap(ErrMasterKeyInvalid, "ACTIVE_MASTER_KEY_ID not set")
	ErrInvalidMasterKeysFormat = errors.Wrap(ErrMasterKeyInvalid, "invalid MASTER_KEYS format")
	ErrInvalidMasterKeyBase64  = errors.Wrap(ErrMasterKeyInvalid, "invalid master key base64")
	ErrActiveMasterKeyNotFound = errors.Wrap(ErrMasterKeyInvalid, "active master key not found")
)
