// Package repository provides data persistence implementations for data
// encryption keys.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	cryptoDomain "github.com/mrlynn/securehealth-sub006/internal/crypto/domain"
	"github.com/mrlynn/securehealth-sub006/internal/database"
	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
)

// PostgreSQLDekRepository implements DEK persistence for PostgreSQL.
// Uses native UUID and BYTEA types with transaction support via database.GetTx().
type PostgreSQLDekRepository struct {
	db *sql.DB
}

// Create inserts a new DEK into the PostgreSQL database. Returns
// apperrors.ErrConflict if a DEK with the same name already exists; any other
// failure is tagged cryptoDomain.ErrKeyStoreUnavailable.
func (p *PostgreSQLDekRepository) Create(ctx context.Context, dek *cryptoDomain.Dek) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO deks (id, name, master_key_id, algorithm, encrypted_key, nonce, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		dek.ID,
		dek.Name,
		dek.MasterKeyID,
		dek.Algorithm,
		dek.EncryptedKey,
		dek.Nonce,
		dek.CreatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return apperrors.Wrapf(apperrors.ErrConflict, "dek %q already exists", dek.Name)
		}
		return apperrors.Wrapf(cryptoDomain.ErrKeyStoreUnavailable, "failed to create dek: %s", err)
	}
	return nil
}

// GetByName retrieves a DEK by its logical name from the PostgreSQL database.
// Returns cryptoDomain.ErrKeyNotFound when no DEK exists under the name;
// backing-store failures are tagged cryptoDomain.ErrKeyStoreUnavailable.
func (p *PostgreSQLDekRepository) GetByName(
	ctx context.Context,
	name string,
) (*cryptoDomain.Dek, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, master_key_id, algorithm, encrypted_key, nonce, created_at
			  FROM deks
			  WHERE name = $1`

	var dek cryptoDomain.Dek
	err := querier.QueryRowContext(ctx, query, name).Scan(
		&dek.ID,
		&dek.Name,
		&dek.MasterKeyID,
		&dek.Algorithm,
		&dek.EncryptedKey,
		&dek.Nonce,
		&dek.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrKeyNotFound
		}
		return nil, apperrors.Wrapf(cryptoDomain.ErrKeyStoreUnavailable, "failed to get dek by name: %s", err)
	}

	return &dek, nil
}

// List retrieves DEKs ordered by name with pagination.
func (p *PostgreSQLDekRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*cryptoDomain.Dek, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, master_key_id, algorithm, encrypted_key, nonce, created_at
			  FROM deks
			  ORDER BY name
			  OFFSET $1 LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, apperrors.Wrapf(cryptoDomain.ErrKeyStoreUnavailable, "failed to list deks: %s", err)
	}
	defer func() { _ = rows.Close() }()

	var deks []*cryptoDomain.Dek
	for rows.Next() {
		var dek cryptoDomain.Dek
		if err := rows.Scan(
			&dek.ID,
			&dek.Name,
			&dek.MasterKeyID,
			&dek.Algorithm,
			&dek.EncryptedKey,
			&dek.Nonce,
			&dek.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrapf(cryptoDomain.ErrKeyStoreUnavailable, "failed to scan dek: %s", err)
		}
		deks = append(deks, &dek)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrapf(cryptoDomain.ErrKeyStoreUnavailable, "failed to iterate deks: %s", err)
	}

	return deks, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

// NewPostgreSQLDekRepository creates a new PostgreSQL DEK repository.
func NewPostgreSQLDekRepository(db *sql.DB) *PostgreSQLDekRepository {
	return &PostgreSQLDekRepository{db: db}
}
