package usecase

import (
	"context"
	"time"

	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/metrics"
)

// transferUseCaseWithMetrics decorates TransferUseCase with metrics instrumentation.
type transferUseCaseWithMetrics struct {
	next    TransferUseCase
	metrics metrics.BusinessMetrics
}

// NewTransferUseCaseWithMetrics wraps a TransferUseCase with metrics recording.
func NewTransferUseCaseWithMetrics(useCase TransferUseCase, m metrics.BusinessMetrics) TransferUseCase {
	return &transferUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Transfer records the transfer result as the operation status.
func (t *transferUseCaseWithMetrics) Transfer(
	ctx context.Context,
	req TransferRequest,
) (graphDomain.TransferResult, error) {
	start := time.Now()
	result, err := t.next.Transfer(ctx, req)

	status := string(result)
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "transfer", "transfer", status)
	t.metrics.RecordDuration(ctx, "transfer", "transfer", time.Since(start), status)

	return result, err
}
