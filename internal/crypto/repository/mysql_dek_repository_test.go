package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/mrlynn/securehealth-sub006/internal/crypto/domain"
	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
)

func TestMySQLDekRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLDekRepository(db)
		dek := testDek()

		idBytes, err := dek.ID.MarshalBinary()
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO deks`)).
			WithArgs(
				idBytes,
				dek.Name,
				dek.MasterKeyID,
				dek.Algorithm,
				dek.EncryptedKey,
				dek.Nonce,
				dek.CreatedAt,
			).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err = repo.Create(ctx, dek)
		assert.NoError(t, err)
	})

	t.Run("Error_DuplicateName", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLDekRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO deks`)).
			WillReturnError(errors.New("Error 1062: Duplicate entry 'patient_ssn_key' for key 'deks.name'"))

		err := repo.Create(ctx, testDek())
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("Error_StoreUnavailable", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLDekRepository(db)

		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO deks`)).
			WillReturnError(errors.New("Error 2002: Can't connect to MySQL server"))

		err := repo.Create(ctx, testDek())
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyStoreUnavailable)
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
		assert.NotErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestMySQLDekRepository_GetByName(t *testing.T) {
	ctx := context.Background()
	columns := []string{"id", "name", "master_key_id", "algorithm", "encrypted_key", "nonce", "created_at"}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLDekRepository(db)
		dek := testDek()

		idBytes, err := dek.ID.MarshalBinary()
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, master_key_id, algorithm, encrypted_key, nonce, created_at`)).
			WithArgs(dek.Name).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				idBytes,
				dek.Name,
				dek.MasterKeyID,
				dek.Algorithm,
				dek.EncryptedKey,
				dek.Nonce,
				dek.CreatedAt,
			))

		got, err := repo.GetByName(ctx, dek.Name)
		require.NoError(t, err)
		assert.Equal(t, dek.ID, got.ID)
		assert.Equal(t, dek.Name, got.Name)
		assert.Equal(t, dek.EncryptedKey, got.EncryptedKey)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLDekRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, master_key_id, algorithm, encrypted_key, nonce, created_at`)).
			WithArgs("missing_key").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByName(ctx, "missing_key")
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyNotFound)
	})

	t.Run("Error_StoreUnavailable", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLDekRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, master_key_id, algorithm, encrypted_key, nonce, created_at`)).
			WithArgs("patient_ssn_key").
			WillReturnError(errors.New("Error 2002: Can't connect to MySQL server"))

		_, err := repo.GetByName(ctx, "patient_ssn_key")
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyStoreUnavailable)
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
		assert.NotErrorIs(t, err, cryptoDomain.ErrKeyNotFound)
	})
}
