package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
	transferUsecase "github.com/devkral/secretgraph/internal/transfer/usecase"
)

type mockClusterRepository struct {
	mock.Mock
}

func (m *mockClusterRepository) Create(ctx context.Context, cluster *graphDomain.Cluster) error {
	return m.Called(ctx, cluster).Error(0)
}

func (m *mockClusterRepository) Get(ctx context.Context, p predicate.Predicate) (*graphDomain.Cluster, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*graphDomain.Cluster), args.Error(1)
}

func (m *mockClusterRepository) List(
	ctx context.Context,
	p predicate.Predicate,
	offset, limit int,
) ([]*graphDomain.Cluster, error) {
	args := m.Called(ctx, p, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*graphDomain.Cluster), args.Error(1)
}

func (m *mockClusterRepository) SetMarkForDestruction(ctx context.Context, id int64, at *time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *mockClusterRepository) SetFlexID(ctx context.Context, id int64, flexID uuid.UUID) error {
	return m.Called(ctx, id, flexID).Error(0)
}

func (m *mockClusterRepository) ListMissingFlexID(ctx context.Context, limit int) ([]int64, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type mockContentRepository struct {
	mock.Mock
}

func (m *mockContentRepository) Create(ctx context.Context, content *graphDomain.Content) error {
	return m.Called(ctx, content).Error(0)
}

func (m *mockContentRepository) Update(ctx context.Context, content *graphDomain.Content) error {
	return m.Called(ctx, content).Error(0)
}

func (m *mockContentRepository) First(ctx context.Context, p predicate.Predicate) (*graphDomain.Content, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*graphDomain.Content), args.Error(1)
}

func (m *mockContentRepository) List(
	ctx context.Context,
	p predicate.Predicate,
	offset, limit int,
) ([]*graphDomain.Content, error) {
	args := m.Called(ctx, p, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*graphDomain.Content), args.Error(1)
}

func (m *mockContentRepository) ReplaceTags(ctx context.Context, id int64, tags []string) error {
	return m.Called(ctx, id, tags).Error(0)
}

func (m *mockContentRepository) ReplaceReferences(
	ctx context.Context,
	id int64,
	refs []*graphDomain.ContentReference,
) error {
	return m.Called(ctx, id, refs).Error(0)
}

func (m *mockContentRepository) ListReferences(
	ctx context.Context,
	sourceID int64,
) ([]*graphDomain.ContentReference, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*graphDomain.ContentReference), args.Error(1)
}

func (m *mockContentRepository) SetMarkForDestruction(ctx context.Context, ids []int64, at *time.Time) (int64, error) {
	args := m.Called(ctx, ids, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockContentRepository) SetFlexID(ctx context.Context, id int64, flexID uuid.UUID) error {
	return m.Called(ctx, id, flexID).Error(0)
}

func (m *mockContentRepository) ListMissingFlexID(ctx context.Context, limit int) ([]int64, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type mockActionRepository struct {
	mock.Mock
}

func (m *mockActionRepository) Create(ctx context.Context, action *graphDomain.Action) error {
	return m.Called(ctx, action).Error(0)
}

type mockValueStore struct {
	mock.Mock
}

func (m *mockValueStore) Write(ctx context.Context, ref string, value []byte) error {
	return m.Called(ctx, ref, value).Error(0)
}

func (m *mockValueStore) Read(ctx context.Context, ref string) ([]byte, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockValueStore) Delete(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

type mockFetchUseCase struct {
	mock.Mock
}

func (m *mockFetchUseCase) ReadAndTrack(
	ctx context.Context,
	env *authzDomain.Envelope,
	query predicate.Predicate,
	direct bool,
) ([]*graphDomain.Content, error) {
	args := m.Called(ctx, env, query, direct)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*graphDomain.Content), args.Error(1)
}

func (m *mockFetchUseCase) Track(
	ctx context.Context,
	env *authzDomain.Envelope,
	contents []*graphDomain.Content,
	direct bool,
) error {
	return m.Called(ctx, env, contents, direct).Error(0)
}

type mockContentDeleter struct {
	mock.Mock
}

func (m *mockContentDeleter) DeleteContents(ctx context.Context, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type mockTransferUseCase struct {
	mock.Mock
}

func (m *mockTransferUseCase) Transfer(
	ctx context.Context,
	req transferUsecase.TransferRequest,
) (graphDomain.TransferResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(graphDomain.TransferResult), args.Error(1)
}
