// Package mocks provides test doubles for the graph use cases.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	graphUsecase "github.com/devkral/secretgraph/internal/graph/usecase"
)

// MockClusterUseCase is a mock ClusterUseCase.
type MockClusterUseCase struct {
	mock.Mock
}

// Create mocks ClusterUseCase.Create.
func (m *MockClusterUseCase) Create(
	ctx context.Context,
	access graphUsecase.Access,
	input graphUsecase.CreateClusterInput,
) (*graphDomain.Cluster, error) {
	args := m.Called(ctx, access, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*graphDomain.Cluster), args.Error(1)
}

// List mocks ClusterUseCase.List.
func (m *MockClusterUseCase) List(
	ctx context.Context,
	access graphUsecase.Access,
	offset, limit int,
) ([]*graphDomain.Cluster, error) {
	args := m.Called(ctx, access, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*graphDomain.Cluster), args.Error(1)
}

// ScheduleDeletion mocks ClusterUseCase.ScheduleDeletion.
func (m *MockClusterUseCase) ScheduleDeletion(
	ctx context.Context,
	access graphUsecase.Access,
	cluster string,
	at *time.Time,
) error {
	return m.Called(ctx, access, cluster, at).Error(0)
}

// FillFlexIDs mocks ClusterUseCase.FillFlexIDs.
func (m *MockClusterUseCase) FillFlexIDs(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockContentUseCase is a mock ContentUseCase.
type MockContentUseCase struct {
	mock.Mock
}

// Create mocks ContentUseCase.Create.
func (m *MockContentUseCase) Create(
	ctx context.Context,
	access graphUsecase.Access,
	input graphUsecase.CreateContentInput,
) (*graphDomain.Content, error) {
	args := m.Called(ctx, access, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*graphDomain.Content), args.Error(1)
}

// CreateKey mocks ContentUseCase.CreateKey.
func (m *MockContentUseCase) CreateKey(
	ctx context.Context,
	access graphUsecase.Access,
	input graphUsecase.CreateKeyInput,
) (*graphUsecase.KeyPair, error) {
	args := m.Called(ctx, access, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*graphUsecase.KeyPair), args.Error(1)
}

// Update mocks ContentUseCase.Update.
func (m *MockContentUseCase) Update(
	ctx context.Context,
	access graphUsecase.Access,
	input graphUsecase.UpdateContentInput,
) (*graphDomain.Content, error) {
	args := m.Called(ctx, access, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*graphDomain.Content), args.Error(1)
}

// UpdateMetadata mocks ContentUseCase.UpdateMetadata.
func (m *MockContentUseCase) UpdateMetadata(
	ctx context.Context,
	access graphUsecase.Access,
	input graphUsecase.UpdateMetadataInput,
) (*graphDomain.Content, error) {
	args := m.Called(ctx, access, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*graphDomain.Content), args.Error(1)
}

// List mocks ContentUseCase.List.
func (m *MockContentUseCase) List(
	ctx context.Context,
	access graphUsecase.Access,
	offset, limit int,
) ([]*graphDomain.Content, error) {
	args := m.Called(ctx, access, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*graphDomain.Content), args.Error(1)
}

// Get mocks ContentUseCase.Get.
func (m *MockContentUseCase) Get(
	ctx context.Context,
	access graphUsecase.Access,
	content string,
) (*graphDomain.Content, []byte, error) {
	args := m.Called(ctx, access, content)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*graphDomain.Content), args.Get(1).([]byte), args.Error(2)
}

// Delete mocks ContentUseCase.Delete.
func (m *MockContentUseCase) Delete(
	ctx context.Context,
	access graphUsecase.Access,
	content string,
) ([]int64, error) {
	args := m.Called(ctx, access, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// ScheduleDeletion mocks ContentUseCase.ScheduleDeletion.
func (m *MockContentUseCase) ScheduleDeletion(
	ctx context.Context,
	access graphUsecase.Access,
	content string,
	at *time.Time,
) error {
	return m.Called(ctx, access, content, at).Error(0)
}

// Transfer mocks ContentUseCase.Transfer.
func (m *MockContentUseCase) Transfer(
	ctx context.Context,
	access graphUsecase.Access,
	input graphUsecase.TransferContentInput,
) (graphDomain.TransferResult, error) {
	args := m.Called(ctx, access, input)
	return args.Get(0).(graphDomain.TransferResult), args.Error(1)
}

// MockActionUseCase is a mock ActionUseCase.
type MockActionUseCase struct {
	mock.Mock
}

// Create mocks ActionUseCase.Create.
func (m *MockActionUseCase) Create(
	ctx context.Context,
	access graphUsecase.Access,
	cluster string,
	inputs []graphUsecase.ActionInput,
) ([]*graphDomain.Action, error) {
	args := m.Called(ctx, access, cluster, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*graphDomain.Action), args.Error(1)
}
