package domain

import (
	"time"

	"github.com/google/uuid"
)

// Dek represents a Data Encryption Key used to encrypt the values of one
// protected record field. DEKs are looked up by Name (the stable key name from
// the field policy, e.g. "patient_ssn_key") and stored wrapped; the plaintext
// key is never persisted and must be zeroed from memory after use.
type Dek struct {
	ID           uuid.UUID // Unique identifier (UUIDv7)
	Name         string    // Stable alternate name, unique per vault
	MasterKeyID  string    // ID of the master key (or KMS key URI) that wraps this DEK
	Algorithm    Algorithm // Encryption algorithm the DEK is used with
	EncryptedKey []byte    // The DEK wrapped by the master key or KMS keeper
	Nonce        []byte    // Nonce used while wrapping (empty for KMS keepers)
	CreatedAt    time.Time
}

// KeyHandle is an unwrapped DEK held in process memory. Handles are cached by
// the key vault client; the Key bytes must never be logged or persisted.
type KeyHandle struct {
	ID   uuid.UUID
	Name string
	Key  []byte
}
