package usecase

import (
	"context"
	"time"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	"github.com/devkral/secretgraph/internal/metrics"
)

// resolverUseCaseWithMetrics decorates ResolverUseCase with metrics instrumentation.
type resolverUseCaseWithMetrics struct {
	next    ResolverUseCase
	metrics metrics.BusinessMetrics
}

// NewResolverUseCaseWithMetrics wraps a ResolverUseCase with metrics recording.
func NewResolverUseCaseWithMetrics(useCase ResolverUseCase, m metrics.BusinessMetrics) ResolverUseCase {
	return &resolverUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func resolveStatus(env *authzDomain.Envelope, err error) string {
	switch {
	case err != nil:
		return "error"
	case env != nil && env.Denied():
		return "denied"
	}
	return "success"
}

// Resolve records metrics for resolutions.
func (r *resolverUseCaseWithMetrics) Resolve(ctx context.Context, req ResolveRequest) (*authzDomain.Envelope, error) {
	start := time.Now()
	env, err := r.next.Resolve(ctx, req)

	status := resolveStatus(env, err)
	r.metrics.RecordOperation(ctx, "authz", "resolve", status)
	r.metrics.RecordDuration(ctx, "authz", "resolve", time.Since(start), status)

	return env, err
}

// ResolveCached records metrics for cached resolutions.
func (r *resolverUseCaseWithMetrics) ResolveCached(
	ctx context.Context,
	cache *authzDomain.PermissionCache,
	req ResolveRequest,
) (*authzDomain.Envelope, error) {
	start := time.Now()
	env, err := r.next.ResolveCached(ctx, cache, req)

	status := resolveStatus(env, err)
	r.metrics.RecordOperation(ctx, "authz", "resolve_cached", status)
	r.metrics.RecordDuration(ctx, "authz", "resolve_cached", time.Since(start), status)

	return env, err
}
