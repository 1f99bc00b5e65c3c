// Package repository provides document store adapters for encrypted record
// storage. The store never sees plaintext for protected fields; filters
// compare ciphertext bytes produced by the codec's equality predicates.
package repository

import (
	"bytes"
	"context"
	"reflect"
	"sync"

	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
	recordsDomain "github.com/mrlynn/securehealth-sub006/internal/records/domain"
)

// MemoryDocumentStore implements document persistence in process memory.
// Intended for tests and local development.
type MemoryDocumentStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]recordsDomain.StorageDocument
}

// Insert stores a new document keyed by its id field.
func (m *MemoryDocumentStore) Insert(
	_ context.Context,
	collection string,
	doc recordsDomain.StorageDocument,
) error {
	id, err := documentID(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string]recordsDomain.StorageDocument)
		m.collections[collection] = docs
	}
	if _, exists := docs[id]; exists {
		return apperrors.Wrap(apperrors.ErrConflict, "document already exists")
	}
	docs[id] = copyDocument(doc)
	return nil
}

// Replace overwrites an existing document.
func (m *MemoryDocumentStore) Replace(
	_ context.Context,
	collection, id string,
	doc recordsDomain.StorageDocument,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.collections[collection]
	if !ok {
		return apperrors.Wrap(apperrors.ErrNotFound, "document not found")
	}
	if _, exists := docs[id]; !exists {
		return apperrors.Wrap(apperrors.ErrNotFound, "document not found")
	}
	docs[id] = copyDocument(doc)
	return nil
}

// FindByID retrieves a document by id.
func (m *MemoryDocumentStore) FindByID(
	_ context.Context,
	collection, id string,
) (recordsDomain.StorageDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs, ok := m.collections[collection]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "document not found")
	}
	doc, exists := docs[id]
	if !exists {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "document not found")
	}
	return copyDocument(doc), nil
}

// FindByFilter returns all documents whose fields exactly match the filter.
// Ciphertext blobs compare byte-for-byte, which is what makes deterministic
// equality predicates work against this store.
func (m *MemoryDocumentStore) FindByFilter(
	_ context.Context,
	collection string,
	filter map[string]any,
) ([]recordsDomain.StorageDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []recordsDomain.StorageDocument
	for _, doc := range m.collections[collection] {
		if matchesFilter(doc, filter) {
			results = append(results, copyDocument(doc))
		}
	}
	return results, nil
}

// Delete removes a document by id.
func (m *MemoryDocumentStore) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.collections[collection]
	if !ok {
		return apperrors.Wrap(apperrors.ErrNotFound, "document not found")
	}
	if _, exists := docs[id]; !exists {
		return apperrors.Wrap(apperrors.ErrNotFound, "document not found")
	}
	delete(docs, id)
	return nil
}

func matchesFilter(doc recordsDomain.StorageDocument, filter map[string]any) bool {
	for name, want := range filter {
		got, ok := doc[name]
		if !ok {
			return false
		}
		wantBytes, wantIsBytes := want.([]byte)
		gotBytes, gotIsBytes := got.([]byte)
		if wantIsBytes || gotIsBytes {
			if !wantIsBytes || !gotIsBytes || !bytes.Equal(wantBytes, gotBytes) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(want, got) {
			return false
		}
	}
	return true
}

func copyDocument(doc recordsDomain.StorageDocument) recordsDomain.StorageDocument {
	copied := make(recordsDomain.StorageDocument, len(doc))
	for name, value := range doc {
		if raw, ok := value.([]byte); ok {
			value = append([]byte(nil), raw...)
		}
		copied[name] = value
	}
	return copied
}

func documentID(doc recordsDomain.StorageDocument) (string, error) {
	raw, ok := doc[recordsDomain.FieldID]
	if !ok || raw == nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "document has no id")
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "document has no id")
	}
	return id, nil
}

// NewMemoryDocumentStore creates a new in-memory document store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		collections: make(map[string]map[string]recordsDomain.StorageDocument),
	}
}
