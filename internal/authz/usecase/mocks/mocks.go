// Package mocks provides test doubles for the authz use cases.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	authzUsecase "github.com/devkral/secretgraph/internal/authz/usecase"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

// MockResolverUseCase is a mock ResolverUseCase.
type MockResolverUseCase struct {
	mock.Mock
}

// Resolve mocks ResolverUseCase.Resolve.
func (m *MockResolverUseCase) Resolve(
	ctx context.Context,
	req authzUsecase.ResolveRequest,
) (*authzDomain.Envelope, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.Envelope), args.Error(1)
}

// ResolveCached mocks ResolverUseCase.ResolveCached.
func (m *MockResolverUseCase) ResolveCached(
	ctx context.Context,
	cache *authzDomain.PermissionCache,
	req authzUsecase.ResolveRequest,
) (*authzDomain.Envelope, error) {
	args := m.Called(ctx, cache, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.Envelope), args.Error(1)
}

// MockActionRepository is a mock ActionRepository.
type MockActionRepository struct {
	mock.Mock
}

// ListActive mocks ActionRepository.ListActive.
func (m *MockActionRepository) ListActive(
	ctx context.Context,
	query authzUsecase.ActionQuery,
) ([]*graphDomain.Action, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*graphDomain.Action), args.Error(1)
}

// NormalizeKeyHash mocks ActionRepository.NormalizeKeyHash.
func (m *MockActionRepository) NormalizeKeyHash(ctx context.Context, from, to string) error {
	args := m.Called(ctx, from, to)
	return args.Error(0)
}

// MockSweeper is a mock Sweeper.
type MockSweeper struct {
	mock.Mock
}

// Sweep mocks Sweeper.Sweep.
func (m *MockSweeper) Sweep(ctx context.Context, now time.Time) error {
	args := m.Called(ctx, now)
	return args.Error(0)
}
