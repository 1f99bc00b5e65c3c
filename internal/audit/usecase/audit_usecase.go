package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/mrlynn/securehealth-sub006/internal/audit/domain"
	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
)

// verifyBatchSize is the page size used by VerifyRange sweeps.
const verifyBatchSize = 500

// auditUseCase implements AuditUseCase.
type auditUseCase struct {
	repo   AuditLogRepository
	signer *auditDomain.Signer
	logger *slog.Logger
}

// Record durably appends one signed audit entry, retrying a failed write
// exactly once.
func (a *auditUseCase) Record(ctx context.Context, entry Entry) error {
	log := &auditDomain.AuditLog{
		ID:         uuid.Must(uuid.NewV7()),
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Outcome:    entry.Outcome,
		Metadata:   entry.Metadata,
		CreatedAt:  time.Now().UTC(),
	}

	signature, err := a.signer.Sign(log)
	if err != nil {
		return apperrors.Wrap(auditDomain.ErrAuditWriteFailed, err.Error())
	}
	log.Signature = signature

	if err := a.repo.Create(ctx, log); err != nil {
		a.logger.WarnContext(ctx, "audit write failed, retrying once",
			"audit_log_id", log.ID,
			"action", log.Action,
			"error", err,
		)
		if err := a.repo.Create(ctx, log); err != nil {
			a.logger.ErrorContext(ctx, "audit write failed after retry",
				"audit_log_id", log.ID,
				"action", log.Action,
				"error", err,
			)
			return apperrors.Wrap(auditDomain.ErrAuditWriteFailed, err.Error())
		}
	}

	return nil
}

// List retrieves entries ordered newest first.
func (a *auditUseCase) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	return a.repo.List(ctx, offset, limit, createdAtFrom, createdAtTo)
}

// VerifyRange recomputes signatures for every entry in [from, to].
func (a *auditUseCase) VerifyRange(
	ctx context.Context,
	from, to time.Time,
) (*VerificationReport, error) {
	report := &VerificationReport{}

	for offset := 0; ; offset += verifyBatchSize {
		logs, err := a.repo.List(ctx, offset, verifyBatchSize, &from, &to)
		if err != nil {
			return nil, err
		}
		if len(logs) == 0 {
			break
		}

		for _, log := range logs {
			report.TotalChecked++
			if len(log.Signature) == 0 {
				report.UnsignedCount++
				continue
			}
			report.SignedCount++
			if err := a.signer.Verify(log); err != nil {
				report.InvalidCount++
				report.InvalidLogs = append(report.InvalidLogs, log.ID)
				continue
			}
			report.ValidCount++
		}

		if len(logs) < verifyBatchSize {
			break
		}
	}

	return report, nil
}

// CleanOlderThan deletes entries created before the given instant.
func (a *auditUseCase) CleanOlderThan(ctx context.Context, before time.Time) (int64, error) {
	deleted, err := a.repo.DeleteOlderThan(ctx, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to clean audit logs")
	}

	a.logger.InfoContext(ctx, "audit logs cleaned",
		"deleted", deleted,
		"before", before,
	)
	return deleted, nil
}

// NewAuditUseCase creates a new audit use case instance.
func NewAuditUseCase(
	repo AuditLogRepository,
	signer *auditDomain.Signer,
	logger *slog.Logger,
) AuditUseCase {
	return &auditUseCase{
		repo:   repo,
		signer: signer,
		logger: logger,
	}
}
