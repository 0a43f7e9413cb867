package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

type mockContentRepository struct {
	mock.Mock
}

func (m *mockContentRepository) Delete(ctx context.Context, id int64) (string, bool, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockContentRepository) ListExpiredIDs(ctx context.Context, now time.Time) ([]int64, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type mockReferenceRepository struct {
	mock.Mock
}

func (m *mockReferenceRepository) ListByTarget(
	ctx context.Context,
	targetID int64,
) ([]*graphDomain.ContentReference, error) {
	args := m.Called(ctx, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*graphDomain.ContentReference), args.Error(1)
}

func (m *mockReferenceRepository) CountInGroup(
	ctx context.Context,
	sourceID int64,
	group string,
	excludeTargetID int64,
) (int64, error) {
	args := m.Called(ctx, sourceID, group, excludeTargetID)
	return args.Get(0).(int64), args.Error(1)
}

type mockClusterRepository struct {
	mock.Mock
}

func (m *mockClusterRepository) DeleteExpiredEmpty(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockValueStore struct {
	mock.Mock
}

func (m *mockValueStore) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}
