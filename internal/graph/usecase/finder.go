package usecase

import (
	"context"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	authzUsecase "github.com/devkral/secretgraph/internal/authz/usecase"
	apperrors "github.com/devkral/secretgraph/internal/errors"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

// scopedFinder loads clusters and contents the request holds a scope on.
// A denied resolution looks exactly like a missing row.
type scopedFinder struct {
	resolver    authzUsecase.ResolverUseCase
	clusterRepo ClusterRepository
	contentRepo ContentRepository
}

func (f *scopedFinder) envelope(
	ctx context.Context,
	access Access,
	kind graphDomain.EntityKind,
	scope string,
	base predicate.Predicate,
) (*authzDomain.Envelope, error) {
	return f.resolver.ResolveCached(ctx, access.Cache, authzUsecase.ResolveRequest{
		Authset: access.Authset,
		Kind:    kind,
		Scope:   scope,
		Base:    base,
	})
}

// cluster returns the live cluster named by raw together with the envelope
// granting scope on it.
func (f *scopedFinder) cluster(
	ctx context.Context,
	access Access,
	raw string,
	scope string,
) (*graphDomain.Cluster, *authzDomain.Envelope, error) {
	flexID, err := graphDomain.ParseFlexID(raw, graphDomain.KindCluster)
	if err != nil {
		return nil, nil, err
	}

	env, err := f.envelope(ctx, access, graphDomain.KindCluster, scope, predicate.Eq(predicate.FieldFlexID, flexID))
	if err != nil {
		return nil, nil, err
	}
	if env.Denied() {
		return nil, nil, graphDomain.ErrClusterNotFound
	}

	cluster, err := f.clusterRepo.Get(ctx, predicate.AllOf(
		env.Objects,
		predicate.IsNull(predicate.FieldMarkForDestruction),
	))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, graphDomain.ErrClusterNotFound
		}
		return nil, nil, err
	}
	return cluster, env, nil
}

// content returns the live content named by raw with its tags, together with
// the envelope granting scope on it.
func (f *scopedFinder) content(
	ctx context.Context,
	access Access,
	raw string,
	scope string,
) (*graphDomain.Content, *authzDomain.Envelope, error) {
	flexID, err := graphDomain.ParseFlexID(raw, graphDomain.KindContent)
	if err != nil {
		return nil, nil, err
	}

	env, err := f.envelope(ctx, access, graphDomain.KindContent, scope, predicate.Eq(predicate.FieldFlexID, flexID))
	if err != nil {
		return nil, nil, err
	}
	if env.Denied() {
		return nil, nil, graphDomain.ErrContentNotFound
	}

	content, err := f.contentRepo.First(ctx, predicate.AllOf(
		env.Objects,
		predicate.IsNull(predicate.FieldMarkForDestruction),
	))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, graphDomain.ErrContentNotFound
		}
		return nil, nil, err
	}
	return content, env, nil
}

// clusterOf loads the cluster holding content.
func (f *scopedFinder) clusterOf(ctx context.Context, content *graphDomain.Content) (*graphDomain.Cluster, error) {
	cluster, err := f.clusterRepo.Get(ctx, predicate.Eq(predicate.FieldID, content.ClusterID))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, graphDomain.ErrClusterNotFound
		}
		return nil, err
	}
	return cluster, nil
}

// referenceTargets returns the predicate of contents the request may reference.
func (f *scopedFinder) referenceTargets(ctx context.Context, access Access) (predicate.Predicate, error) {
	env, err := f.envelope(ctx, access, graphDomain.KindContent, authzDomain.ScopeView, nil)
	if err != nil {
		return nil, err
	}
	if env.Denied() {
		return predicate.False(), nil
	}
	return env.Objects, nil
}
