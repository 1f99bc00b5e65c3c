package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	auditDomain "github.com/mrlynn/securehealth-sub006/internal/audit/domain"
	auditUsecase "github.com/mrlynn/securehealth-sub006/internal/audit/usecase"
	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
	"github.com/mrlynn/securehealth-sub006/internal/records/access"
	"github.com/mrlynn/securehealth-sub006/internal/records/codec"
	recordsDomain "github.com/mrlynn/securehealth-sub006/internal/records/domain"
)

// patientCollection is the document store collection for patient records.
const patientCollection = "patients"

// Role sets per operation.
var (
	createRoles = []recordsDomain.Role{recordsDomain.RoleDoctor, recordsDomain.RoleReceptionist}
	readRoles   = []recordsDomain.Role{recordsDomain.RoleDoctor, recordsDomain.RoleNurse, recordsDomain.RoleReceptionist}
	updateRoles = []recordsDomain.Role{recordsDomain.RoleDoctor, recordsDomain.RoleNurse}
	deleteRoles = []recordsDomain.Role{recordsDomain.RoleDoctor}
)

// recordUseCase implements RecordUseCase over a DocumentStore, a Codec, a
// Projector, and an audit recorder.
type recordUseCase struct {
	store     DocumentStore
	codec     codec.Codec
	projector *access.Projector
	audit     auditUsecase.AuditUseCase
	logger    *slog.Logger
}

// NewRecordUseCase creates a new record façade.
func NewRecordUseCase(
	store DocumentStore,
	recordCodec codec.Codec,
	projector *access.Projector,
	audit auditUsecase.AuditUseCase,
	logger *slog.Logger,
) RecordUseCase {
	return &recordUseCase{
		store:     store,
		codec:     recordCodec,
		projector: projector,
		audit:     audit,
		logger:    logger,
	}
}

// Create stores a new patient record and returns the creator's projection.
func (r *recordUseCase) Create(
	ctx context.Context,
	actor recordsDomain.Actor,
	patient *recordsDomain.Patient,
) (*recordsDomain.ProjectedView, error) {
	if !actor.HasAnyRole(createRoles...) {
		return nil, r.deny(ctx, actor, auditDomain.ActionCreate, "")
	}

	if err := validatePatient(patient); err != nil {
		invalid := apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
		return nil, r.fail(ctx, actor, auditDomain.ActionCreate, "", nil, invalid)
	}

	if patient.ID == uuid.Nil {
		patient.ID = uuid.Must(uuid.NewV7())
	}
	now := time.Now().UTC()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	fields := patient.Fields()
	doc, err := r.codec.Encode(ctx, recordsDomain.RecordTypePatient, fields)
	if err != nil {
		return nil, r.fail(ctx, actor, auditDomain.ActionCreate, patient.ID.String(), nil, err)
	}

	if err := r.store.Insert(ctx, patientCollection, doc); err != nil {
		return nil, r.fail(ctx, actor, auditDomain.ActionCreate, patient.ID.String(), nil, err)
	}

	if err := r.record(ctx, actor, auditDomain.ActionCreate, patient.ID.String(), auditDomain.OutcomeSucceeded, nil); err != nil {
		return nil, err
	}

	return r.projector.Project(recordsDomain.RecordTypePatient, fields, nil, actor), nil
}

// Get retrieves a patient record by id, projected for the actor.
func (r *recordUseCase) Get(
	ctx context.Context,
	actor recordsDomain.Actor,
	id uuid.UUID,
) (*recordsDomain.ProjectedView, error) {
	if !actor.HasAnyRole(readRoles...) {
		return nil, r.deny(ctx, actor, auditDomain.ActionRead, id.String())
	}

	doc, err := r.store.FindByID(ctx, patientCollection, id.String())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			err = recordsDomain.ErrRecordNotFound
		}
		return nil, r.fail(ctx, actor, auditDomain.ActionRead, id.String(), nil, err)
	}

	fields, warnings, err := r.codec.Decode(ctx, recordsDomain.RecordTypePatient, doc)
	if err != nil {
		return nil, r.fail(ctx, actor, auditDomain.ActionRead, id.String(), nil, err)
	}

	metadata := warningMetadata(warnings)
	if err := r.record(ctx, actor, auditDomain.ActionRead, id.String(), auditDomain.OutcomeSucceeded, metadata); err != nil {
		return nil, err
	}

	return r.projector.Project(recordsDomain.RecordTypePatient, fields, warnings, actor), nil
}

// SearchByField finds records by exact match on a deterministic field.
func (r *recordUseCase) SearchByField(
	ctx context.Context,
	actor recordsDomain.Actor,
	fieldName string,
	value any,
) ([]*recordsDomain.ProjectedView, error) {
	if !actor.HasAnyRole(readRoles...) {
		return nil, r.deny(ctx, actor, auditDomain.ActionSearch, "")
	}

	searchMeta := map[string]any{"field": fieldName}

	predicate, err := r.codec.EqualityPredicate(ctx, recordsDomain.RecordTypePatient, fieldName, value)
	if err != nil {
		return nil, r.fail(ctx, actor, auditDomain.ActionSearch, "", searchMeta, err)
	}

	docs, err := r.store.FindByFilter(ctx, patientCollection, map[string]any{fieldName: predicate})
	if err != nil {
		return nil, r.fail(ctx, actor, auditDomain.ActionSearch, "", searchMeta, err)
	}

	views := make([]*recordsDomain.ProjectedView, 0, len(docs))
	for _, doc := range docs {
		fields, warnings, err := r.codec.Decode(ctx, recordsDomain.RecordTypePatient, doc)
		if err != nil {
			return nil, r.fail(ctx, actor, auditDomain.ActionSearch, "", searchMeta, err)
		}
		views = append(views, r.projector.Project(recordsDomain.RecordTypePatient, fields, warnings, actor))
	}

	searchMeta["results"] = len(views)
	if err := r.record(ctx, actor, auditDomain.ActionSearch, "", auditDomain.OutcomeSucceeded, searchMeta); err != nil {
		return nil, err
	}

	return views, nil
}

// Update replaces an existing patient record. The original created_at is
// preserved; updated_at is set to now.
func (r *recordUseCase) Update(
	ctx context.Context,
	actor recordsDomain.Actor,
	patient *recordsDomain.Patient,
) (*recordsDomain.ProjectedView, error) {
	if !actor.HasAnyRole(updateRoles...) {
		return nil, r.deny(ctx, actor, auditDomain.ActionUpdate, "")
	}

	if patient.ID == uuid.Nil {
		invalid := apperrors.Wrap(apperrors.ErrInvalidInput, "patient id is required")
		return nil, r.fail(ctx, actor, auditDomain.ActionUpdate, "", nil, invalid)
	}
	if err := validatePatient(patient); err != nil {
		invalid := apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
		return nil, r.fail(ctx, actor, auditDomain.ActionUpdate, patient.ID.String(), nil, invalid)
	}

	existing, err := r.store.FindByID(ctx, patientCollection, patient.ID.String())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			err = recordsDomain.ErrRecordNotFound
		}
		return nil, r.fail(ctx, actor, auditDomain.ActionUpdate, patient.ID.String(), nil, err)
	}

	// created_at is stored in plaintext, so it survives without key access.
	if createdAt, ok := existing[recordsDomain.FieldCreatedAt].(time.Time); ok {
		patient.CreatedAt = createdAt
	}
	patient.UpdatedAt = time.Now().UTC()

	fields := patient.Fields()
	doc, err := r.codec.Encode(ctx, recordsDomain.RecordTypePatient, fields)
	if err != nil {
		return nil, r.fail(ctx, actor, auditDomain.ActionUpdate, patient.ID.String(), nil, err)
	}

	if err := r.store.Replace(ctx, patientCollection, patient.ID.String(), doc); err != nil {
		return nil, r.fail(ctx, actor, auditDomain.ActionUpdate, patient.ID.String(), nil, err)
	}

	if err := r.record(ctx, actor, auditDomain.ActionUpdate, patient.ID.String(), auditDomain.OutcomeSucceeded, nil); err != nil {
		return nil, err
	}

	return r.projector.Project(recordsDomain.RecordTypePatient, fields, nil, actor), nil
}

// Delete removes a patient record.
func (r *recordUseCase) Delete(ctx context.Context, actor recordsDomain.Actor, id uuid.UUID) error {
	if !actor.HasAnyRole(deleteRoles...) {
		return r.deny(ctx, actor, auditDomain.ActionDelete, id.String())
	}

	if err := r.store.Delete(ctx, patientCollection, id.String()); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			err = recordsDomain.ErrRecordNotFound
		}
		return r.fail(ctx, actor, auditDomain.ActionDelete, id.String(), nil, err)
	}

	return r.record(ctx, actor, auditDomain.ActionDelete, id.String(), auditDomain.OutcomeSucceeded, nil)
}

// record writes one audit entry. Audit durability is part of operation
// success: a failed write surfaces to the caller even when the data mutation
// already happened.
func (r *recordUseCase) record(
	ctx context.Context,
	actor recordsDomain.Actor,
	action auditDomain.Action,
	targetID string,
	outcome auditDomain.Outcome,
	metadata map[string]any,
) error {
	return r.audit.Record(ctx, auditUsecase.Entry{
		ActorID:    actor.ID,
		Action:     action,
		TargetType: recordsDomain.RecordTypePatient,
		TargetID:   targetID,
		Outcome:    outcome,
		Metadata:   metadata,
	})
}

// deny audits a rejected operation and returns ErrAccessDenied. A failed
// audit write takes precedence so denials are never silently unrecorded.
func (r *recordUseCase) deny(
	ctx context.Context,
	actor recordsDomain.Actor,
	action auditDomain.Action,
	targetID string,
) error {
	if err := r.record(ctx, actor, action, targetID, auditDomain.OutcomeDenied, nil); err != nil {
		return err
	}
	return recordsDomain.ErrAccessDenied
}

// fail audits a failed operation and returns the operation error. A failed
// audit write takes precedence.
func (r *recordUseCase) fail(
	ctx context.Context,
	actor recordsDomain.Actor,
	action auditDomain.Action,
	targetID string,
	metadata map[string]any,
	opErr error,
) error {
	if err := r.record(ctx, actor, action, targetID, auditDomain.OutcomeFailed, metadata); err != nil {
		return err
	}
	return opErr
}

func warningMetadata(warnings []recordsDomain.FieldWarning) map[string]any {
	if len(warnings) == 0 {
		return nil
	}
	return map[string]any{"withheld_fields": len(warnings)}
}

func validatePatient(patient *recordsDomain.Patient) error {
	return validation.ValidateStruct(patient,
		validation.Field(&patient.FirstName, validation.Required),
		validation.Field(&patient.LastName, validation.Required),
		validation.Field(&patient.Status, validation.Required, validation.In(
			recordsDomain.PatientStatusActive,
			recordsDomain.PatientStatusInactive,
			recordsDomain.PatientStatusArchived,
		)),
	)
}
