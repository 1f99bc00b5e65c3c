// Package repository provides data persistence implementations for audit
// entries.
package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	auditDomain "github.com/mrlynn/securehealth-sub006/internal/audit/domain"
	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
)

// MemoryAuditLogRepository implements audit persistence in process memory.
// Writes can be made to fail on demand, which is how the façade tests
// simulate an audit sink outage.
type MemoryAuditLogRepository struct {
	mu       sync.Mutex
	logs     []*auditDomain.AuditLog
	failures int
}

// FailNextWrites makes the next n Create calls fail.
func (m *MemoryAuditLogRepository) FailNextWrites(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
}

// Create appends an entry, honoring any injected failures.
func (m *MemoryAuditLogRepository) Create(_ context.Context, log *auditDomain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failures > 0 {
		m.failures--
		return apperrors.Wrap(apperrors.ErrUnavailable, "audit sink unavailable")
	}

	stored := *log
	m.logs = append(m.logs, &stored)
	return nil
}

// List returns entries ordered by created_at descending with pagination and
// optional inclusive time bounds.
func (m *MemoryAuditLogRepository) List(
	_ context.Context,
	offset, limit int,
	createdAtFrom, createdAtTo *time.Time,
) ([]*auditDomain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filtered := make([]*auditDomain.AuditLog, 0, len(m.logs))
	for _, log := range m.logs {
		if createdAtFrom != nil && log.CreatedAt.Before(*createdAtFrom) {
			continue
		}
		if createdAtTo != nil && log.CreatedAt.After(*createdAtTo) {
			continue
		}
		copied := *log
		filtered = append(filtered, &copied)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	if offset >= len(filtered) {
		return []*auditDomain.AuditLog{}, nil
	}
	filtered = filtered[offset:]
	if limit > 0 && limit < len(filtered) {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// DeleteOlderThan removes entries created before the given instant.
func (m *MemoryAuditLogRepository) DeleteOlderThan(
	_ context.Context,
	before time.Time,
) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.logs[:0]
	var deleted int64
	for _, log := range m.logs {
		if log.CreatedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, log)
	}
	m.logs = kept
	return deleted, nil
}

// Count returns the number of stored entries.
func (m *MemoryAuditLogRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

// NewMemoryAuditLogRepository creates a new in-memory audit repository.
func NewMemoryAuditLogRepository() *MemoryAuditLogRepository {
	return &MemoryAuditLogRepository{}
}
