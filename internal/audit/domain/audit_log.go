// Package domain defines the audit trail entities: append-only entries
// recording who performed which protected operation on which record, with an
// HMAC signature for tamper evidence.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action is the kind of protected operation being audited.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionSearch Action = "search"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Outcome is the result of the audited operation.
type Outcome string

const (
	// OutcomeSucceeded marks a completed operation.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeDenied marks an operation rejected by authorization.
	OutcomeDenied Outcome = "denied"
	// OutcomeFailed marks an operation that started but did not complete.
	OutcomeFailed Outcome = "failed"
)

// AuditLog is one append-only audit entry. It never contains plaintext field
// values, only identifiers and action metadata. Entries are created when a
// protected operation concludes and are never updated or deleted by the core;
// retention cleanup is a separate operational command.
type AuditLog struct {
	ID         uuid.UUID
	ActorID    string
	Action     Action
	TargetType string
	TargetID   string
	Outcome    Outcome
	Metadata   map[string]any
	Signature  []byte
	CreatedAt  time.Time
}
