package usecase

import (
	"context"
	"time"

	"github.com/devkral/secretgraph/internal/metrics"
)

// deletionUseCaseWithMetrics decorates DeletionUseCase with metrics instrumentation.
type deletionUseCaseWithMetrics struct {
	next    DeletionUseCase
	metrics metrics.BusinessMetrics
}

// NewDeletionUseCaseWithMetrics wraps a DeletionUseCase with metrics recording.
func NewDeletionUseCaseWithMetrics(useCase DeletionUseCase, m metrics.BusinessMetrics) DeletionUseCase {
	return &deletionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// OnContentDeleted is not instrumented; it runs inside DeleteContents.
func (d *deletionUseCaseWithMetrics) OnContentDeleted(ctx context.Context, id int64) ([]int64, error) {
	return d.next.OnContentDeleted(ctx, id)
}

// DeleteContents records metrics for cascading deletions.
func (d *deletionUseCaseWithMetrics) DeleteContents(ctx context.Context, ids []int64) ([]int64, error) {
	start := time.Now()
	deleted, err := d.next.DeleteContents(ctx, ids)
	d.record(ctx, "delete_contents", start, err)
	if err == nil {
		d.metrics.RecordContents(ctx, "deletion", "delete_contents", len(deleted))
	}
	return deleted, err
}

// Sweep records metrics for the lazy garbage collection.
func (d *deletionUseCaseWithMetrics) Sweep(ctx context.Context, now time.Time) error {
	start := time.Now()
	err := d.next.Sweep(ctx, now)
	d.record(ctx, "sweep", start, err)
	return err
}

func (d *deletionUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "deletion", operation, status)
	d.metrics.RecordDuration(ctx, "deletion", operation, time.Since(start), status)
}
