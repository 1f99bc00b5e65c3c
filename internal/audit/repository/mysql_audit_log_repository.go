package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	auditDomain "github.com/mrlynn/securehealth-sub006/internal/audit/domain"
	"github.com/mrlynn/securehealth-sub006/internal/database"
	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
)

// MySQLAuditLogRepository implements audit persistence for MySQL.
// Uses BINARY(16) for UUIDs and BLOB for binary data with transaction support.
type MySQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts a new audit entry. Nil metadata is stored as NULL.
func (m *MySQLAuditLogRepository) Create(ctx context.Context, log *auditDomain.AuditLog) error {
	querier := database.GetTx(ctx, m.db)

	id, err := log.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit log id")
	}

	metadataJSON, err := marshalMetadata(log.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_logs
			  (id, actor_id, action, target_type, target_id, outcome, metadata, signature, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLAuditLogRepository) List(
	ctx context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	querier := database.GetTx(ctx, m.db)

	var builder strings.Builder
	builder.WriteString(`SELECT id, actor_id, action, target_type, target_id, outcome, metadata, signature, created_at
			  FROM audit_logs`)
	args := make([]any, 0, 4)
	conditions := make([]string, 0, 2)

	if createdAtFrom != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *createdAtFrom)
	}
	if createdAtTo != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *createdAtTo)
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY created_at DESC LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	defer func() { _ = rows.Close() }()

	logs := make([]*auditDomain.AuditLog, 0)
	for rows.Next() {
		log, err := scanMySQLAuditLog(rows)
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
func (m *MySQLAuditLogRepository) DeleteOlderThan(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < ?`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit logs")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted audit logs")
	}
	return deleted, nil
}

// scanMySQLAuditLog maps one result row onto an AuditLog, unmarshaling the
// BINARY(16) id.
func scanMySQLAuditLog(rows *sql.Rows) (*auditDomain.AuditLog, error) {
	var log auditDomain.AuditLog
	var idBytes, metadataJSON []byte
	var action, outcome string

	if err := rows.Scan(
		&idBytes,
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

	if err := log.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal audit log id")
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

// NewMySQLAuditLogRepository creates a new MySQL audit repository.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}
