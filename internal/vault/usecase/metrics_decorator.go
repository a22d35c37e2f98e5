package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/credvault/internal/crypto/domain"
	"github.com/allisson/credvault/internal/metrics"
	vaultDomain "github.com/allisson/credvault/internal/vault/domain"
)

const metricsDomain = "vault"

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// rotationUseCaseWithMetrics decorates RotationUseCase with metrics instrumentation.
type rotationUseCaseWithMetrics struct {
	next    RotationUseCase
	metrics metrics.BusinessMetrics
}

// NewRotationUseCaseWithMetrics wraps a RotationUseCase with metrics recording.
func NewRotationUseCaseWithMetrics(useCase RotationUseCase, m metrics.BusinessMetrics) RotationUseCase {
	return &rotationUseCaseWithMetrics{next: useCase, metrics: m}
}

// RotateKey records the run outcome, its duration and the per-record counts.
func (r *rotationUseCaseWithMetrics) RotateKey(
	ctx context.Context,
	oldKey, newKey string,
) *vaultDomain.RotationResult {
	start := time.Now()
	result := r.next.RotateKey(ctx, oldKey, newKey)

	status := "success"
	if !result.Success {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, metricsDomain, "key_rotate", status)
	r.metrics.RecordDuration(ctx, metricsDomain, "key_rotate", time.Since(start), status)
	r.metrics.RecordRotation(ctx, result.UpdatedCount, len(result.Errors))

	return result
}

// recordUseCaseWithMetrics decorates RecordUseCase with metrics instrumentation.
type recordUseCaseWithMetrics struct {
	next    RecordUseCase
	metrics metrics.BusinessMetrics
}

// NewRecordUseCaseWithMetrics wraps a RecordUseCase with metrics recording.
func NewRecordUseCaseWithMetrics(useCase RecordUseCase, m metrics.BusinessMetrics) RecordUseCase {
	return &recordUseCaseWithMetrics{next: useCase, metrics: m}
}

func (r *recordUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := statusOf(err)
	r.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	r.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (r *recordUseCaseWithMetrics) Create(
	ctx context.Context,
	input CreateRecordInput,
) (*vaultDomain.Record, error) {
	start := time.Now()
	record, err := r.next.Create(ctx, input)
	r.record(ctx, "record_create", start, err)
	return record, err
}

func (r *recordUseCaseWithMetrics) Get(ctx context.Context, recordID uuid.UUID) (*vaultDomain.Record, error) {
	start := time.Now()
	record, err := r.next.Get(ctx, recordID)
	r.record(ctx, "record_get", start, err)
	return record, err
}

func (r *recordUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*vaultDomain.Record, error) {
	start := time.Now()
	records, err := r.next.List(ctx, offset, limit)
	r.record(ctx, "record_list", start, err)
	return records, err
}

func (r *recordUseCaseWithMetrics) Delete(ctx context.Context, recordID uuid.UUID) error {
	start := time.Now()
	err := r.next.Delete(ctx, recordID)
	r.record(ctx, "record_delete", start, err)
	return err
}

func (r *recordUseCaseWithMetrics) KeyStatus(ctx context.Context) (*cryptoDomain.KeyStatus, error) {
	start := time.Now()
	status, err := r.next.KeyStatus(ctx)
	r.record(ctx, "key_status", start, err)
	return status, err
}
