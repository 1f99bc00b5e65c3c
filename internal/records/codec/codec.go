// Package codec transforms typed records to and from their storage
// representation, encrypting and decrypting fields per the protection policy.
// It also builds the encrypted equality predicates that make searches on
// deterministic fields work without decrypting anything at the store.
package codec

import (
	"context"
	"log/slog"

	cryptoDomain "github.com/mrlynn/securehealth-sub006/internal/crypto/domain"
	cryptoService "github.com/mrlynn/securehealth-sub006/internal/crypto/service"
	cryptoUsecase "github.com/mrlynn/securehealth-sub006/internal/crypto/usecase"
	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
	recordsDomain "github.com/mrlynn/securehealth-sub006/internal/records/domain"
	"github.com/mrlynn/securehealth-sub006/internal/records/policy"
)

// Codec converts between decrypted field maps and storage documents.
type Codec interface {
	// Encode encrypts fields per policy and returns the storage document.
	Encode(ctx context.Context, recordType string, fields map[string]any) (recordsDomain.StorageDocument, error)

	// Decode decrypts a storage document. Fields whose ciphertext cannot be
	// decrypted are withheld and reported as warnings; the call fails only
	// when every encrypted field is unreadable.
	Decode(ctx context.Context, recordType string, doc recordsDomain.StorageDocument) (map[string]any, []recordsDomain.FieldWarning, error)

	// EqualityPredicate re-derives the storage-side value that Encode would
	// produce for the given plaintext, so the store can filter by exact match.
	// Only valid for deterministic fields.
	EqualityPredicate(ctx context.Context, recordType, fieldName string, value any) (any, error)
}

// EncryptingCodec is the production Codec: deterministic and random
// treatments per the policy registry, DEKs from the key vault.
type EncryptingCodec struct {
	registry  *policy.Registry
	vault     cryptoUsecase.KeyVault
	aead      cryptoService.AEADManager
	algorithm cryptoDomain.Algorithm
	logger    *slog.Logger
}

// NewEncryptingCodec creates the production codec.
func NewEncryptingCodec(
	registry *policy.Registry,
	vault cryptoUsecase.KeyVault,
	aead cryptoService.AEADManager,
	algorithm cryptoDomain.Algorithm,
	logger *slog.Logger,
) *EncryptingCodec {
	return &EncryptingCodec{
		registry:  registry,
		vault:     vault,
		aead:      aead,
		algorithm: algorithm,
		logger:    logger,
	}
}

// fieldAAD binds ciphertext to its record type and field slot so a blob
// moved to another field fails authentication.
func fieldAAD(recordType, fieldName string) []byte {
	return []byte(recordType + "." + fieldName)
}

// Encode encrypts fields per policy and returns the storage document.
func (c *EncryptingCodec) Encode(
	ctx context.Context,
	recordType string,
	fields map[string]any,
) (recordsDomain.StorageDocument, error) {
	doc := make(recordsDomain.StorageDocument, len(fields))

	for name, value := range fields {
		if value == nil {
			doc[name] = nil
			continue
		}
		if raw, ok := value.([]byte); ok && recordsDomain.IsEncryptedBlob(raw) {
			return nil, recordsDomain.ErrAlreadyEncrypted
		}

		entry, configured := c.registry.Lookup(recordType, name)
		if !configured || entry.Treatment == policy.TreatmentPlaintext {
			doc[name] = value
			continue
		}

		blob, err := c.encryptField(ctx, recordType, name, entry, value)
		if err != nil {
			return nil, err
		}
		doc[name] = blob
	}

	return doc, nil
}

func (c *EncryptingCodec) encryptField(
	ctx context.Context,
	recordType, fieldName string,
	entry policy.Entry,
	value any,
) ([]byte, error) {
	plaintext, err := serializeValue(value)
	if err != nil {
		return nil, err
	}

	handle, err := c.vault.GetOrCreateKey(ctx, entry.KeyName)
	if err != nil {
		return nil, err
	}

	var (
		cipher cryptoService.AEAD
		mode   recordsDomain.BlobMode
	)
	switch entry.Treatment {
	case policy.TreatmentDeterministic:
		cipher, err = c.aead.CreateDeterministicCipher(handle.Key)
		mode = recordsDomain.BlobModeDeterministic
	default:
		cipher, err = c.aead.CreateCipher(handle.Key, c.algorithm)
		mode = recordsDomain.BlobModeRandom
	}
	if err != nil {
		return nil, err
	}

	ciphertext, nonce, err := cipher.Encrypt(plaintext, fieldAAD(recordType, fieldName))
	if err != nil {
		return nil, err
	}

	blob := recordsDomain.EncryptedValue{
		Mode:       mode,
		KeyName:    entry.KeyName,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}
	return blob.MarshalBinary()
}

// Decode decrypts a storage document back into a field map.
func (c *EncryptingCodec) Decode(
	ctx context.Context,
	recordType string,
	doc recordsDomain.StorageDocument,
) (map[string]any, []recordsDomain.FieldWarning, error) {
	fields := make(map[string]any, len(doc))
	var warnings []recordsDomain.FieldWarning
	encrypted, unreadable := 0, 0

	for name, value := range doc {
		raw, ok := value.([]byte)
		if !ok || !recordsDomain.IsEncryptedBlob(raw) {
			fields[name] = value
			continue
		}

		encrypted++
		decoded, err := c.decryptField(ctx, recordType, name, raw)
		if err != nil {
			// Key-store outages abort the whole read; there is no plaintext
			// fallback and no partial result built on an unreachable vault.
			if apperrors.Is(err, apperrors.ErrUnavailable) {
				return nil, nil, err
			}
			unreadable++
			warnings = append(warnings, recordsDomain.FieldWarning{
				Field:  name,
				Reason: "decryption failed",
			})
			c.logger.ErrorContext(ctx, "field decryption failed",
				"record_type", recordType,
				"field", name,
				"error", err,
			)
			continue
		}
		fields[name] = decoded
	}

	if encrypted > 0 && unreadable == encrypted {
		return nil, warnings, recordsDomain.ErrAllFieldsUnreadable
	}

	return fields, warnings, nil
}

func (c *EncryptingCodec) decryptField(
	ctx context.Context,
	recordType, fieldName string,
	raw []byte,
) (any, error) {
	var blob recordsDomain.EncryptedValue
	if err := blob.UnmarshalBinary(raw); err != nil {
		return nil, err
	}

	handle, err := c.vault.GetOrCreateKey(ctx, blob.KeyName)
	if err != nil {
		return nil, err
	}

	var cipher cryptoService.AEAD
	if blob.Mode == recordsDomain.BlobModeDeterministic {
		cipher, err = c.aead.CreateDeterministicCipher(handle.Key)
	} else {
		cipher, err = c.aead.CreateCipher(handle.Key, c.algorithm)
	}
	if err != nil {
		return nil, err
	}

	plaintext, err := cipher.Decrypt(blob.Ciphertext, blob.Nonce, fieldAAD(recordType, fieldName))
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return deserializeValue(plaintext)
}

// EqualityPredicate re-derives the deterministic blob for a plaintext value.
func (c *EncryptingCodec) EqualityPredicate(
	ctx context.Context,
	recordType, fieldName string,
	value any,
) (any, error) {
	if value == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "equality value must not be nil")
	}

	entry, configured := c.registry.Lookup(recordType, fieldName)
	if !configured {
		return nil, recordsDomain.ErrFieldNotConfigured
	}
	if entry.Treatment != policy.TreatmentDeterministic {
		return nil, recordsDomain.ErrUnsupportedQueryKind
	}

	return c.encryptField(ctx, recordType, fieldName, entry, value)
}

// PlaintextCodec stores fields without encryption. It is only reachable
// through the explicit disabled-for-testing configuration mode; the encrypting
// codec is the sole production path.
type PlaintextCodec struct {
	logger *slog.Logger
}

// NewPlaintextCodec creates the no-encryption codec used by the
// disabled-for-testing mode.
func NewPlaintextCodec(logger *slog.Logger) *PlaintextCodec {
	logger.Warn("encryption is DISABLED; all fields will be stored in plaintext")
	return &PlaintextCodec{logger: logger}
}

// Encode copies fields through unchanged, still rejecting already-encrypted
// blobs so documents cannot mix codec paths.
func (c *PlaintextCodec) Encode(
	_ context.Context,
	_ string,
	fields map[string]any,
) (recordsDomain.StorageDocument, error) {
	doc := make(recordsDomain.StorageDocument, len(fields))
	for name, value := range fields {
		if raw, ok := value.([]byte); ok && recordsDomain.IsEncryptedBlob(raw) {
			return nil, recordsDomain.ErrAlreadyEncrypted
		}
		doc[name] = value
	}
	return doc, nil
}

// Decode copies fields through unchanged. Encrypted blobs present in the
// document (written while encryption was enforced) are withheld with a
// warning rather than returned as raw ciphertext.
func (c *PlaintextCodec) Decode(
	ctx context.Context,
	recordType string,
	doc recordsDomain.StorageDocument,
) (map[string]any, []recordsDomain.FieldWarning, error) {
	fields := make(map[string]any, len(doc))
	var warnings []recordsDomain.FieldWarning

	for name, value := range doc {
		if raw, ok := value.([]byte); ok && recordsDomain.IsEncryptedBlob(raw) {
			warnings = append(warnings, recordsDomain.FieldWarning{
				Field:  name,
				Reason: "encrypted field in plaintext mode",
			})
			c.logger.WarnContext(ctx, "encrypted field skipped in plaintext mode",
				"record_type", recordType,
				"field", name,
			)
			continue
		}
		fields[name] = value
	}

	return fields, warnings, nil
}

// EqualityPredicate returns the plaintext value itself; with no encryption
// the store filters on the stored value directly.
func (c *PlaintextCodec) EqualityPredicate(
	_ context.Context,
	_, _ string,
	value any,
) (any, error) {
	if value == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "equality value must not be nil")
	}
	return value, nil
}
