package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mrlynn/securehealth-sub006/internal/metrics"
	recordsDomain "github.com/mrlynn/securehealth-sub006/internal/records/domain"
)

// recordUseCaseWithMetrics decorates RecordUseCase with metrics instrumentation.
type recordUseCaseWithMetrics struct {
	next    RecordUseCase
	metrics metrics.BusinessMetrics
}

// NewRecordUseCaseWithMetrics wraps a RecordUseCase with metrics recording.
func NewRecordUseCaseWithMetrics(useCase RecordUseCase, m metrics.BusinessMetrics) RecordUseCase {
	return &recordUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for record creation operations.
func (r *recordUseCaseWithMetrics) Create(
	ctx context.Context,
	actor recordsDomain.Actor,
	patient *recordsDomain.Patient,
) (*recordsDomain.ProjectedView, error) {
	start := time.Now()
	view, err := r.next.Create(ctx, actor, patient)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "records", "record_create", status)
	r.metrics.RecordDuration(ctx, "records", "record_create", time.Since(start), status)

	return view, err
}

// Get records metrics for record retrieval operations.
func (r *recordUseCaseWithMetrics) Get(
	ctx context.Context,
	actor recordsDomain.Actor,
	id uuid.UUID,
) (*recordsDomain.ProjectedView, error) {
	start := time.Now()
	view, err := r.next.Get(ctx, actor, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "records", "record_get", status)
	r.metrics.RecordDuration(ctx, "records", "record_get", time.Since(start), status)

	return view, err
}

// SearchByField records metrics for equality search operations.
func (r *recordUseCaseWithMetrics) SearchByField(
	ctx context.Context,
	actor recordsDomain.Actor,
	fieldName string,
	value any,
) ([]*recordsDomain.ProjectedView, error) {
	start := time.Now()
	views, err := r.next.SearchByField(ctx, actor, fieldName, value)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "records", "record_search", status)
	r.metrics.RecordDuration(ctx, "records", "record_search", time.Since(start), status)

	return views, err
}

// Update records metrics for record update operations.
func (r *recordUseCaseWithMetrics) Update(
	ctx context.Context,
	actor recordsDomain.Actor,
	patient *recordsDomain.Patient,
) (*recordsDomain.ProjectedView, error) {
	start := time.Now()
	view, err := r.next.Update(ctx, actor, patient)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "records", "record_update", status)
	r.metrics.RecordDuration(ctx, "records", "record_update", time.Since(start), status)

	return view, err
}

// Delete records metrics for record deletion operations.
func (r *recordUseCaseWithMetrics) Delete(
	ctx context.Context,
	actor recordsDomain.Actor,
	id uuid.UUID,
) error {
	start := time.Now()
	err := r.next.Delete(ctx, actor, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "records", "record_delete", status)
	r.metrics.RecordDuration(ctx, "records", "record_delete", time.Since(start), status)

	return err
}
