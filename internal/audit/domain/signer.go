package domain

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"io"

	"golang.org/x/crypto/hkdf"

	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
)

// signingInfo versions the key derivation so the algorithm can change without
// invalidating old signatures wholesale.
const signingInfo = "audit-log-signing-v1"

// Signer computes and checks HMAC-SHA256 signatures over audit entries. The
// signing key is derived from the configured secret via HKDF-SHA256 so the
// raw secret is never used directly as MAC key material.
type Signer struct {
	signingKey []byte
}

// NewSigner derives the signing key from the configured audit secret.
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) == 0 {
		return nil, apperrors.New("audit signing secret must not be empty")
	}

	kdf := hkdf.New(sha256.New, secret, nil, []byte(signingInfo))
	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, signingKey); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive audit signing key")
	}

	return &Signer{signingKey: signingKey}, nil
}

// Sign computes the signature for an entry. The entry's Signature field is
// not part of the signed content.
func (s *Signer) Sign(log *AuditLog) ([]byte, error) {
	canonical, err := canonicalize(log)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify recomputes the entry's signature and compares it to the stored one.
// Returns ErrSignatureMismatch when they differ.
func (s *Signer) Verify(log *AuditLog) error {
	expected, err := s.Sign(log)
	if err != nil {
		return err
	}
	if !hmac.Equal(log.Signature, expected) {
		return ErrSignatureMismatch
	}
	return nil
}

// canonicalize converts an entry to its canonical byte representation:
// id || actor || action || target_type || target_id || outcome || metadata || created_at,
// with variable-length fields length-prefixed so field boundaries are
// unambiguous.
func canonicalize(log *AuditLog) ([]byte, error) {
	buf := make([]byte, 0, 512)
	buf = append(buf, log.ID[:]...)
	buf = appendLengthPrefixed(buf, []byte(log.ActorID))
	buf = appendLengthPrefixed(buf, []byte(log.Action))
	buf = appendLengthPrefixed(buf, []byte(log.TargetType))
	buf = appendLengthPrefixed(buf, []byte(log.TargetID))
	buf = appendLengthPrefixed(buf, []byte(log.Outcome))

	if log.Metadata != nil {
		metadataBytes, err := json.Marshal(log.Metadata)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal audit metadata")
		}
		buf = appendLengthPrefixed(buf, metadataBytes)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(log.CreatedAt.UnixNano()))
	buf = append(buf, timeBytes...)

	return buf, nil
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf, data []byte) []byte {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	buf = append(buf, length...)
	return append(buf, data...)
}
