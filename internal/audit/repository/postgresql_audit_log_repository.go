package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	auditDomain "github.com/mrlynn/securehealth-sub006/internal/audit/domain"
	"github.com/mrlynn/securehealth-sub006/internal/database"
	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
)

// PostgreSQLAuditLogRepository implements audit persistence for PostgreSQL.
// Uses native UUID and BYTEA types with transaction support via database.GetTx().
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts a new audit entry. Nil metadata is stored as NULL.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, log *auditDomain.AuditLog) error {
	querier := database.GetTx(ctx, p.db)

	metadataJSON, err := marshalMetadata(log.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_logs
			  (id, actor_id, action, target_type, target_id, outcome, metadata, signature, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		log.ID,
		log.ActorID,
		string(log.Action),
		log.TargetType,
		log.TargetID,
		string(log.Outcome),
		metadataJSON,
		log.Signature,
		log.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit log")
	}
	return nil
}

// List retrieves entries ordered by created_at descending with pagination and
// optional inclusive time bounds.
func (p *PostgreSQLAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, actor_id, action, target_type, target_id, outcome, metadata, signature, created_at
			  FROM audit_logs
			  WHERE ($1::timestamptz IS NULL OR created_at >= $1)
			    AND ($2::timestamptz IS NULL OR created_at <= $2)
			  ORDER BY created_at DESC
			  LIMIT $3 OFFSET $4`

	rows, err := querier.QueryContext(ctx, query, createdAtFrom, createdAtTo, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	defer func() { _ = rows.Close() }()

	logs := make([]*auditDomain.AuditLog, 0)
	for rows.Next() {
		log, err := scanAuditLog(rows.Scan)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit logs")
	}

	return logs, nil
}

// DeleteOlderThan removes entries created before the given instant and
// returns how many were removed.
func (p *PostgreSQLAuditLogRepository) DeleteOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted audit logs")
	}
	return deleted, nil
}

// scanAuditLog maps one result row onto an AuditLog.
func scanAuditLog(scan func(dest ...any) error) (*auditDomain.AuditLog, error) {
	var log auditDomain.AuditLog
	var action, outcome string
	var metadataJSON []byte

	if err := scan(
		&log.ID,
		&log.ActorID,
		&action,
		&log.TargetType,
		&log.TargetID,
		&outcome,
		&metadataJSON,
		&log.Signature,
		&log.CreatedAt,
	); err != nil {
		return nil, apperrors.Wrap(err, "failed to scan audit log")
	}

	log.Action = auditDomain.Action(action)
	log.Outcome = auditDomain.Outcome(outcome)
	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &log.Metadata); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit log metadata")
		}
	}
	return &log, nil
}

// marshalMetadata serializes metadata, mapping nil to database NULL.
func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit log metadata")
	}
	return metadataJSON, nil
}

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL audit repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}
