package usecase

import (
	"context"
	"time"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/metrics"
	"github.com/devkral/secretgraph/internal/predicate"
)

// fetchUseCaseWithMetrics decorates FetchUseCase with metrics instrumentation.
type fetchUseCaseWithMetrics struct {
	next    FetchUseCase
	metrics metrics.BusinessMetrics
}

// NewFetchUseCaseWithMetrics wraps a FetchUseCase with metrics recording.
func NewFetchUseCaseWithMetrics(useCase FetchUseCase, m metrics.BusinessMetrics) FetchUseCase {
	return &fetchUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// ReadAndTrack records metrics for tracked reads.
func (f *fetchUseCaseWithMetrics) ReadAndTrack(
	ctx context.Context,
	env *authzDomain.Envelope,
	query predicate.Predicate,
	direct bool,
) ([]*graphDomain.Content, error) {
	start := time.Now()
	contents, err := f.next.ReadAndTrack(ctx, env, query, direct)

	status := "success"
	if err != nil {
		status = "error"
	}

	f.metrics.RecordOperation(ctx, "fetch", "read_and_track", status)
	f.metrics.RecordDuration(ctx, "fetch", "read_and_track", time.Since(start), status)
	if err == nil {
		f.metrics.RecordContents(ctx, "fetch", "read_and_track", len(contents))
	}

	return contents, err
}

// Track records metrics for read tracking.
func (f *fetchUseCaseWithMetrics) Track(
	ctx context.Context,
	env *authzDomain.Envelope,
	contents []*graphDomain.Content,
	direct bool,
) error {
	start := time.Now()
	err := f.next.Track(ctx, env, contents, direct)

	status := "success"
	if err != nil {
		status = "error"
	}

	f.metrics.RecordOperation(ctx, "fetch", "track", status)
	f.metrics.RecordDuration(ctx, "fetch", "track", time.Since(start), status)
	if err == nil {
		f.metrics.RecordContents(ctx, "fetch", "track", len(contents))
	}

	return err
}
