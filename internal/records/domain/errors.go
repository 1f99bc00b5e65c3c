package domain

import (
	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
)

// Record-specific errors. All unwrap to the shared sentinels in
// internal/errors so callers can branch with errors.Is without importing this
// package. Messages never name the failing field or key; that detail goes to
// the operational log only.
var (
	// ErrRecordNotFound indicates the requested record does not exist.
	ErrRecordNotFound = apperrors.Wrap(apperrors.ErrNotFound, "record not found")

	// ErrAccessDenied indicates the actor's roles do not permit the operation.
	ErrAccessDenied = apperrors.Wrap(apperrors.ErrForbidden, "access denied")

	// ErrUnsupportedQueryKind indicates an equality search was attempted on a
	// field whose treatment does not support it.
	ErrUnsupportedQueryKind = apperrors.Wrap(apperrors.ErrInvalidInput, "unsupported query kind")

	// ErrAlreadyEncrypted indicates a value submitted for encoding is already
	// an encrypted blob. There is exactly one encoding path; re-encoding an
	// encoded document would silently double-encrypt.
	ErrAlreadyEncrypted = apperrors.Wrap(apperrors.ErrInvalidInput, "value is already encrypted")

	// ErrAllFieldsUnreadable indicates every encrypted field of a document
	// failed to decrypt, so no meaningful record can be reconstructed.
	ErrAllFieldsUnreadable = apperrors.Wrap(apperrors.ErrUnavailable, "record could not be decrypted")

	// ErrFieldNotConfigured indicates a field name with no policy entry was
	// used where an explicit policy is required (e.g. equality predicates).
	ErrFieldNotConfigured = apperrors.Wrap(apperrors.ErrInvalidInput, "field has no policy entry")

	// ErrMalformedDocument indicates a storage document that cannot be mapped
	// back onto the record schema.
	ErrMalformedDocument = apperrors.Wrap(apperrors.ErrInvalidInput, "malformed storage document")
)
