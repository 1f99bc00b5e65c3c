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

// MySQLDekRepository implements DEK persistence for MySQL.
// Uses BINARY(16) for UUIDs and BLOB for binary data with transaction support.
type MySQLDekRepository struct {
	db *sql.DB
}

// Create inserts a new DEK into the MySQL database. Returns
// apperrors.ErrConflict if a DEK with the same name already exists; any other
// failure is tagged cryptoDomain.ErrKeyStoreUnavailable.
func (m *MySQLDekRepository) Create(ctx context.Context, dek *cryptoDomain.Dek) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO deks (id, name, master_key_id, algorithm, encrypted_key, nonce, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	id, err := dek.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal dek id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		dek.Name,
		dek.MasterKeyID,
		dek.Algorithm,
		dek.EncryptedKey,
		dek.Nonce,
		dek.CreatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return apperrors.Wrapf(apperrors.ErrConflict, "dek %q already exists", dek.Name)
		}
		return apperrors.Wrapf(cryptoDomain.ErrKeyStoreUnavailable, "failed to create dek: %s", err)
	}
	return nil
}

// GetByName retrieves a DEK by its logical name from the MySQL database.
// Returns cryptoDomain.ErrKeyNotFound when no DEK exists under the name;
// backing-store failures are tagged cryptoDomain.ErrKeyStoreUnavailable.
func (m *MySQLDekRepository) GetByName(
	ctx context.Context,
	name string,
) (*cryptoDomain.Dek, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, master_key_id, algorithm, encrypted_key, nonce, created_at
			  FROM deks
			  WHERE name = ?`

	var dek cryptoDomain.Dek
	var idBytes []byte

	err := querier.QueryRowContext(ctx, query, name).Scan(
		&idBytes,
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

	if err := dek.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal dek id")
	}

	return &dek, nil
}

// List retrieves DEKs ordered by name with pagination.
func (m *MySQLDekRepository) List(
	ctx context.Context,
	offset, limit int,
) ([]*cryptoDomain.Dek, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, master_key_id, algorithm, encrypted_key, nonce, created_at
			  FROM deks
			  ORDER BY name
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrapf(cryptoDomain.ErrKeyStoreUnavailable, "failed to list deks: %s", err)
	}
	defer func() { _ = rows.Close() }()

	var deks []*cryptoDomain.Dek
	for rows.Next() {
		var dek cryptoDomain.Dek
		var idBytes []byte
		if err := rows.Scan(
			&idBytes,
			&dek.Name,
			&dek.MasterKeyID,
			&dek.Algorithm,
			&dek.EncryptedKey,
			&dek.Nonce,
			&dek.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrapf(cryptoDomain.ErrKeyStoreUnavailable, "failed to scan dek: %s", err)
		}
		if err := dek.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal dek id")
		}
		deks = append(deks, &dek)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrapf(cryptoDomain.ErrKeyStoreUnavailable, "failed to iterate deks: %s", err)
	}

	return deks, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}

// NewMySQLDekRepository creates a new MySQL DEK repository.
func NewMySQLDekRepository(db *sql.DB) *MySQLDekRepository {
	return &MySQLDekRepository{db: db}
}
