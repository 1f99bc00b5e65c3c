package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
	recordsDomain "github.com/mrlynn/securehealth-sub006/internal/records/domain"
)

func testDocument(id string) recordsDomain.StorageDocument {
	return recordsDomain.StorageDocument{
		recordsDomain.FieldID:        id,
		recordsDomain.FieldFirstName: "John",
		recordsDomain.FieldLastName:  []byte{0xC6, 0x01, 0x01, 0x03, 'k', 'e', 'y', 0x00, 0xAA, 0xBB},
		recordsDomain.FieldStatus:    recordsDomain.PatientStatusActive,
		recordsDomain.FieldCreatedAt: time.Now().UTC(),
	}
}

func TestMemoryDocumentStore_InsertAndFindByID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()

	require.NoError(t, store.Insert(ctx, "patients", testDocument("p-1")))

	doc, err := store.FindByID(ctx, "patients", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "John", doc[recordsDomain.FieldFirstName])

	t.Run("duplicate id conflicts", func(t *testing.T) {
		err := store.Insert(ctx, "patients", testDocument("p-1"))
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("missing id rejected", func(t *testing.T) {
		err := store.Insert(ctx, "patients", recordsDomain.StorageDocument{"first_name": "x"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("unknown id not found", func(t *testing.T) {
		_, err := store.FindByID(ctx, "patients", "p-404")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestMemoryDocumentStore_Replace(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()
	require.NoError(t, store.Insert(ctx, "patients", testDocument("p-1")))

	updated := testDocument("p-1")
	updated[recordsDomain.FieldFirstName] = "Jane"
	require.NoError(t, store.Replace(ctx, "patients", "p-1", updated))

	doc, err := store.FindByID(ctx, "patients", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", doc[recordsDomain.FieldFirstName])

	err = store.Replace(ctx, "patients", "p-404", updated)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryDocumentStore_FindByFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()

	first := testDocument("p-1")
	second := testDocument("p-2")
	second[recordsDomain.FieldLastName] = []byte{0xC6, 0x01, 0x01, 0x03, 'k', 'e', 'y', 0x00, 0xCC, 0xDD}
	require.NoError(t, store.Insert(ctx, "patients", first))
	require.NoError(t, store.Insert(ctx, "patients", second))

	t.Run("ciphertext bytes match exactly", func(t *testing.T) {
		docs, err := store.FindByFilter(ctx, "patients", map[string]any{
			recordsDomain.FieldLastName: first[recordsDomain.FieldLastName],
		})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "p-1", docs[0][recordsDomain.FieldID])
	})

	t.Run("plaintext fields match by value", func(t *testing.T) {
		docs, err := store.FindByFilter(ctx, "patients", map[string]any{
			recordsDomain.FieldStatus: recordsDomain.PatientStatusActive,
		})
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("no match returns empty", func(t *testing.T) {
		docs, err := store.FindByFilter(ctx, "patients", map[string]any{
			recordsDomain.FieldLastName: []byte{0x00},
		})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestMemoryDocumentStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()
	require.NoError(t, store.Insert(ctx, "patients", testDocument("p-1")))

	require.NoError(t, store.Delete(ctx, "patients", "p-1"))
	_, err := store.FindByID(ctx, "patients", "p-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = store.Delete(ctx, "patients", "p-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryDocumentStore_CopyIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDocumentStore()

	original := testDocument("p-1")
	require.NoError(t, store.Insert(ctx, "patients", original))

	// Mutating the inserted map must not alter the stored copy.
	original[recordsDomain.FieldFirstName] = "mutated"
	original[recordsDomain.FieldLastName].([]byte)[0] = 0xFF

	doc, err := store.FindByID(ctx, "patients", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "John", doc[recordsDomain.FieldFirstName])
	assert.EqualValues(t, 0xC6, doc[recordsDomain.FieldLastName].([]byte)[0])

	// Mutating a returned copy must not alter the stored copy either.
	doc[recordsDomain.FieldFirstName] = "also mutated"
	again, err := store.FindByID(ctx, "patients", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "John", again[recordsDomain.FieldFirstName])
}
