package repository

import (
	"context"
	"sort"
	"sync"

	cryptoDomain "github.com/mrlynn/securehealth-sub006/internal/crypto/domain"
	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
)

// MemoryDekRepository implements DEK persistence in process memory. Intended
// for tests and local development where no database is available.
type MemoryDekRepository struct {
	mu   sync.RWMutex
	deks map[string]*cryptoDomain.Dek
}

// Create stores a new DEK. Returns apperrors.ErrConflict if a DEK with the
// same name already exists.
func (m *MemoryDekRepository) Create(_ context.Context, dek *cryptoDomain.Dek) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.deks[dek.Name]; exists {
		return apperrors.Wrapf(apperrors.ErrConflict, "dek %q already exists", dek.Name)
	}

	stored := *dek
	m.deks[dek.Name] = &stored
	return nil
}

// GetByName retrieves a DEK by its logical name.
func (m *MemoryDekRepository) GetByName(_ context.Context, name string) (*cryptoDomain.Dek, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dek, ok := m.deks[name]
	if !ok {
		return nil, cryptoDomain.ErrKeyNotFound
	}

	copied := *dek
	return &copied, nil
}

// List retrieves DEKs ordered by name with pagination.
func (m *MemoryDekRepository) List(_ context.Context, offset, limit int) ([]*cryptoDomain.Dek, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.deks))
	for name := range m.deks {
		names = append(names, name)
	}
	sort.Strings(names)

	if offset >= len(names) {
		return nil, nil
	}
	names = names[offset:]
	if limit > 0 && limit < len(names) {
		names = names[:limit]
	}

	deks := make([]*cryptoDomain.Dek, 0, len(names))
	for _, name := range names {
		copied := *m.deks[name]
		deks = append(deks, &copied)
	}
	return deks, nil
}

// NewMemoryDekRepository creates a new in-memory DEK repository.
func NewMemoryDekRepository() *MemoryDekRepository {
	return &MemoryDekRepository{deks: make(map[string]*cryptoDomain.Dek)}
}
