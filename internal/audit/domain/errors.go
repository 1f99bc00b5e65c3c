package domain

import (
	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
)

var (
	// ErrAuditWriteFailed indicates an audit entry could not be durably
	// recorded after retrying. The surrounding operation must report failure
	// to its caller even if the data mutation already succeeded.
	ErrAuditWriteFailed = apperrors.Wrap(apperrors.ErrUnavailable, "audit write failed")

	// ErrSignatureMismatch indicates an entry whose stored signature does not
	// match its recomputed one, i.e. the entry was altered after being written.
	ErrSignatureMismatch = apperrors.New("audit log signature mismatch")
)
