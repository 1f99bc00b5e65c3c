// Package usecase implements the record repository façade: op-level role
// authorization, field encryption via the codec, role projection, and exactly
// one audit entry per operation.
package usecase

import (
	"context"

	"github.com/google/uuid"

	recordsDomain "github.com/mrlynn/securehealth-sub006/internal/records/domain"
)

// DocumentStore persists storage documents. Adapters are expected to keep
// []byte values intact so ciphertext filters match byte-for-byte.
type DocumentStore interface {
	// Insert stores a new document keyed by its id field.
	Insert(ctx context.Context, collection string, doc recordsDomain.StorageDocument) error

	// Replace overwrites an existing document.
	Replace(ctx context.Context, collection, id string, doc recordsDomain.StorageDocument) error

	// FindByID retrieves a document by id.
	FindByID(ctx context.Context, collection, id string) (recordsDomain.StorageDocument, error)

	// FindByFilter returns all documents whose fields exactly match the filter.
	FindByFilter(ctx context.Context, collection string, filter map[string]any) ([]recordsDomain.StorageDocument, error)

	// Delete removes a document by id.
	Delete(ctx context.Context, collection, id string) error
}

// RecordUseCase is the patient record façade. Every operation authorizes the
// actor, audits the outcome, and returns only the actor's projected view.
type RecordUseCase interface {
	// Create stores a new patient record. Allowed roles: doctor, receptionist.
	Create(ctx context.Context, actor recordsDomain.Actor, patient *recordsDomain.Patient) (*recordsDomain.ProjectedView, error)

	// Get retrieves a patient record by id. Allowed roles: doctor, nurse,
	// receptionist.
	Get(ctx context.Context, actor recordsDomain.Actor, id uuid.UUID) (*recordsDomain.ProjectedView, error)

	// SearchByField finds records whose field exactly matches the given value.
	// Only fields with deterministic treatment are searchable. Allowed roles:
	// doctor, nurse, receptionist.
	SearchByField(ctx context.Context, actor recordsDomain.Actor, fieldName string, value any) ([]*recordsDomain.ProjectedView, error)

	// Update replaces an existing patient record. Allowed roles: doctor, nurse.
	Update(ctx context.Context, actor recordsDomain.Actor, patient *recordsDomain.Patient) (*recordsDomain.ProjectedView, error)

	// Delete removes a patient record. Allowed role: doctor.
	Delete(ctx context.Context, actor recordsDomain.Actor, id uuid.UUID) error
}
