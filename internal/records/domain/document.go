package domain

import (
	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
)

// StorageDocument is the at-rest shape of a record: plaintext fields carried
// as-is, protected fields replaced by EncryptedValue blobs (their marshaled
// bytes), absent values carried as nil.
type StorageDocument map[string]any

// BlobMode tags an encrypted blob with the treatment that produced it.
type BlobMode byte

const (
	// BlobModeDeterministic marks ciphertext reproducible from (plaintext, DEK).
	BlobModeDeterministic BlobMode = 0x01
	// BlobModeRandom marks ciphertext produced with a fresh random nonce.
	BlobModeRandom BlobMode = 0x02
)

// Encrypted blob framing. The magic prefix lets the codec tell ciphertext
// from plaintext without consulting the policy table, which keeps mixed or
// legacy documents decodable.
const (
	blobMagic0 = 0xC6
	blobMagic1 = 0x01

	blobHeaderLen = 3 // magic (2) + mode (1)
	maxKeyNameLen = 255
	maxNonceLen   = 255
)

// ErrInvalidBlob indicates bytes that carry the blob magic but cannot be
// parsed as an encrypted value.
var ErrInvalidBlob = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid encrypted blob")

// EncryptedValue is a field ciphertext bound to the DEK and treatment that
// produced it.
type EncryptedValue struct {
	Mode       BlobMode
	KeyName    string
	Nonce      []byte
	Ciphertext []byte
}

// MarshalBinary encodes the value as
// magic | mode | keyNameLen u8 | keyName | nonceLen u8 | nonce | ciphertext.
func (e *EncryptedValue) MarshalBinary() ([]byte, error) {
	if e.Mode != BlobModeDeterministic && e.Mode != BlobModeRandom {
		return nil, apperrors.Wrap(ErrInvalidBlob, "unknown blob mode")
	}
	if len(e.KeyName) == 0 || len(e.KeyName) > maxKeyNameLen {
		return nil, apperrors.Wrap(ErrInvalidBlob, "key name length out of range")
	}
	if len(e.Nonce) > maxNonceLen {
		return nil, apperrors.Wrap(ErrInvalidBlob, "nonce length out of range")
	}

	out := make([]byte, 0, blobHeaderLen+2+len(e.KeyName)+len(e.Nonce)+len(e.Ciphertext))
	out = append(out, blobMagic0, blobMagic1, byte(e.Mode))
	out = append(out, byte(len(e.KeyName)))
	out = append(out, e.KeyName...)
	out = append(out, byte(len(e.Nonce)))
	out = append(out, e.Nonce...)
	out = append(out, e.Ciphertext...)
	return out, nil
}

// UnmarshalBinary parses a marshaled encrypted value.
func (e *EncryptedValue) UnmarshalBinary(data []byte) error {
	if !IsEncryptedBlob(data) {
		return apperrors.Wrap(ErrInvalidBlob, "missing blob magic")
	}

	mode := BlobMode(data[2])
	if mode != BlobModeDeterministic && mode != BlobModeRandom {
		return apperrors.Wrap(ErrInvalidBlob, "unknown blob mode")
	}

	rest := data[blobHeaderLen:]
	if len(rest) < 1 {
		return apperrors.Wrap(ErrInvalidBlob, "truncated key name")
	}
	keyNameLen := int(rest[0])
	rest = rest[1:]
	if keyNameLen == 0 || len(rest) < keyNameLen {
		return apperrors.Wrap(ErrInvalidBlob, "truncated key name")
	}
	keyName := string(rest[:keyNameLen])
	rest = rest[keyNameLen:]

	if len(rest) < 1 {
		return apperrors.Wrap(ErrInvalidBlob, "truncated nonce")
	}
	nonceLen := int(rest[0])
	rest = rest[1:]
	if len(rest) < nonceLen {
		return apperrors.Wrap(ErrInvalidBlob, "truncated nonce")
	}

	e.Mode = mode
	e.KeyName = keyName
	e.Nonce = append([]byte(nil), rest[:nonceLen]...)
	e.Ciphertext = append([]byte(nil), rest[nonceLen:]...)
	return nil
}

// IsEncryptedBlob reports whether data starts with the encrypted blob magic.
func IsEncryptedBlob(data []byte) bool {
	return len(data) >= blobHeaderLen && data[0] == blobMagic0 && data[1] == blobMagic1
}
