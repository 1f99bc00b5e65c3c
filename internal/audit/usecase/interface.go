// Package usecase implements the audit recorder: synchronous, signed,
// append-only entries whose durability is part of the surrounding operation's
// own success criterion.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/mrlynn/securehealth-sub006/internal/audit/domain"
)

// AuditLogRepository defines the interface for audit entry persistence.
type AuditLogRepository interface {
	Create(ctx context.Context, log *auditDomain.AuditLog) error
	// List retrieves entries ordered by created_at descending with pagination
	// and optional inclusive time bounds (nil means unbounded).
	List(ctx context.Context, offset, limit int, createdAtFrom, createdAtTo *time.Time) ([]*auditDomain.AuditLog, error)
	// DeleteOlderThan removes entries created before the given instant and
	// returns how many were removed. Retention tooling only; the core never
	// deletes audit entries.
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// Entry is the caller-supplied content of one audit record.
type Entry struct {
	ActorID    string
	Action     auditDomain.Action
	TargetType string
	TargetID   string
	Outcome    auditDomain.Outcome
	Metadata   map[string]any
}

// VerificationReport summarizes an integrity sweep over a time range.
type VerificationReport struct {
	TotalChecked  int64
	SignedCount   int64
	UnsignedCount int64
	ValidCount    int64
	InvalidCount  int64
	InvalidLogs   []uuid.UUID
}

// AuditUseCase defines audit recording and the operational sweeps built on
// the same store.
type AuditUseCase interface {
	// Record durably appends one signed entry. It retries a failed write
	// exactly once; if the retry also fails it returns ErrAuditWriteFailed
	// and the caller must fail the surrounding operation.
	Record(ctx context.Context, entry Entry) error

	// List retrieves entries for operational inspection.
	List(ctx context.Context, offset, limit int, createdAtFrom, createdAtTo *time.Time) ([]*auditDomain.AuditLog, error)

	// VerifyRange recomputes signatures for all entries in [from, to].
	VerifyRange(ctx context.Context, from, to time.Time) (*VerificationReport, error)

	// CleanOlderThan deletes entries older than the given instant.
	CleanOlderThan(ctx context.Context, before time.Time) (int64, error)
}
