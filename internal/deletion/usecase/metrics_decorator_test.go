package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordContents(ctx context.Context, domain, operation string, count int) {
	m.Called(ctx, domain, operation, count)
}

type mockDeletionUseCase struct {
	mock.Mock
}

func (m *mockDeletionUseCase) OnContentDeleted(ctx context.Context, id int64) ([]int64, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockDeletionUseCase) DeleteContents(ctx context.Context, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *mockDeletionUseCase) Sweep(ctx context.Context, now time.Time) error {
	return m.Called(ctx, now).Error(0)
}

func expectRecord(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "deletion", operation, status).Once()
	m.On("RecordDuration", ctx, "deletion", operation, mock.AnythingOfType("time.Duration"), status).Once()
}

func TestDeletionUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("DeleteContents success", func(t *testing.T) {
		next := &mockDeletionUseCase{}
		m := &mockBusinessMetrics{}
		next.On("DeleteContents", ctx, []int64{1}).Return([]int64{1, 2}, nil).Once()
		expectRecord(m, ctx, "delete_contents", "success")
		m.On("RecordContents", ctx, "deletion", "delete_contents", 2).Once()

		deleted, err := NewDeletionUseCaseWithMetrics(next, m).DeleteContents(ctx, []int64{1})
		assert.NoError(t, err)
		assert.Equal(t, []int64{1, 2}, deleted)
		next.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("DeleteContents error", func(t *testing.T) {
		next := &mockDeletionUseCase{}
		m := &mockBusinessMetrics{}
		next.On("DeleteContents", ctx, []int64{1}).Return(nil, errors.New("boom")).Once()
		expectRecord(m, ctx, "delete_contents", "error")

		_, err := NewDeletionUseCaseWithMetrics(next, m).DeleteContents(ctx, []int64{1})
		assert.Error(t, err)
		m.AssertExpectations(t)
		m.AssertNotCalled(t, "RecordContents", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Sweep", func(t *testing.T) {
		next := &mockDeletionUseCase{}
		m := &mockBusinessMetrics{}
		next.On("Sweep", ctx, now).Return(nil).Once()
		expectRecord(m, ctx, "sweep", "success")

		assert.NoError(t, NewDeletionUseCaseWithMetrics(next, m).Sweep(ctx, now))
		m.AssertExpectations(t)
	})

	t.Run("OnContentDeleted passes through", func(t *testing.T) {
		next := &mockDeletionUseCase{}
		m := &mockBusinessMetrics{}
		next.On("OnContentDeleted", ctx, int64(3)).Return([]int64{4}, nil).Once()

		ids, err := NewDeletionUseCaseWithMetrics(next, m).OnContentDeleted(ctx, 3)
		assert.NoError(t, err)
		assert.Equal(t, []int64{4}, ids)
		m.AssertNotCalled(t, "RecordOperation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
