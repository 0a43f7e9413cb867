package usecase

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	databaseMocks "github.com/devkral/secretgraph/internal/database/mocks"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

type mockContentRepository struct {
	mock.Mock
}

func (m *mockContentRepository) Find(ctx context.Context, p predicate.Predicate) ([]*graphDomain.Content, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*graphDomain.Content), args.Error(1)
}

func (m *mockContentRepository) MarkFetchedForDestruction(ctx context.Context, ids []int64, at time.Time) (int64, error) {
	args := m.Called(ctx, ids, at)
	return args.Get(0).(int64), args.Error(1)
}

type mockContentActionRepository struct {
	mock.Mock
}

func (m *mockContentActionRepository) MarkUsed(ctx context.Context, ids []int64) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

type fetchFixture struct {
	txManager         *databaseMocks.MockTxManager
	contentRepo       *mockContentRepository
	contentActionRepo *mockContentActionRepository
	useCase           FetchUseCase
}

func newFetchFixture(onlyDirect bool) *fetchFixture {
	f := &fetchFixture{
		txManager:         &databaseMocks.MockTxManager{},
		contentRepo:       &mockContentRepository{},
		contentActionRepo: &mockContentActionRepository{},
	}
	f.useCase = NewFetchUseCase(
		f.txManager,
		f.contentRepo,
		f.contentActionRepo,
		Options{DestructionDelay: 8 * time.Hour, OnlyDirectTrigger: onlyDirect},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func envelopeWith(actions ...*graphDomain.Action) *authzDomain.Envelope {
	env := authzDomain.NewEnvelope(graphDomain.KindContent, authzDomain.ScopeView)
	env.Objects = predicate.Eq(predicate.FieldClusterID, int64(1))
	for _, a := range actions {
		env.Actions = append(env.Actions, &authzDomain.ResolvedAction{Action: a})
	}
	return env
}

func fetchAction(id, contentActionID, contentID int64, group string) *graphDomain.Action {
	return &graphDomain.Action{
		ID:        id,
		ClusterID: 1,
		ContentAction: &graphDomain.ContentAction{
			ID:        contentActionID,
			ActionID:  id,
			ContentID: contentID,
			Group:     group,
		},
	}
}

func TestFetchUseCase_Track(t *testing.T) {
	ctx := context.Background()
	contents := []*graphDomain.Content{{ID: 42}}

	t.Run("Success_DirectReadSchedulesDestruction", func(t *testing.T) {
		f := newFetchFixture(false)
		env := envelopeWith(fetchAction(1, 10, 42, graphDomain.ActionGroupFetch))

		before := time.Now()
		f.txManager.On("WithTx", ctx).Return(nil).Once()
		f.contentActionRepo.On("MarkUsed", ctx, []int64{10}).Return(nil).Once()
		f.contentRepo.On("MarkFetchedForDestruction", ctx, []int64{42}, mock.MatchedBy(func(at time.Time) bool {
			return !at.Before(before.Add(8*time.Hour)) && !at.After(time.Now().Add(8*time.Hour))
		})).Return(int64(1), nil).Once()

		require.NoError(t, f.useCase.Track(ctx, env, contents, true))
		f.txManager.AssertExpectations(t)
		f.contentActionRepo.AssertExpectations(t)
		f.contentRepo.AssertExpectations(t)
	})

	t.Run("Success_AlreadyScheduledIsNotExtended", func(t *testing.T) {
		f := newFetchFixture(false)
		env := envelopeWith(fetchAction(1, 10, 42, graphDomain.ActionGroupFetch))

		f.txManager.On("WithTx", ctx).Return(nil).Once()
		f.contentActionRepo.On("MarkUsed", ctx, []int64{10}).Return(nil).Once()
		// the guarded update matches nothing once a deadline exists
		f.contentRepo.On("MarkFetchedForDestruction", ctx, []int64{42}, mock.AnythingOfType("time.Time")).
			Return(int64(0), nil).
			Once()

		require.NoError(t, f.useCase.Track(ctx, env, contents, true))
		f.contentRepo.AssertExpectations(t)
	})

	t.Run("Success_IndirectReadIgnoredWhenOnlyDirect", func(t *testing.T) {
		f := newFetchFixture(true)
		env := envelopeWith(fetchAction(1, 10, 42, graphDomain.ActionGroupFetch))

		require.NoError(t, f.useCase.Track(ctx, env, contents, false))
		f.txManager.AssertNotCalled(t, "WithTx", mock.Anything)
	})

	t.Run("Success_IndirectReadTracked", func(t *testing.T) {
		f := newFetchFixture(false)
		env := envelopeWith(fetchAction(1, 10, 42, graphDomain.ActionGroupFetch))

		f.txManager.On("WithTx", ctx).Return(nil).Once()
		f.contentActionRepo.On("MarkUsed", ctx, []int64{10}).Return(nil).Once()
		f.contentRepo.On("MarkFetchedForDestruction", ctx, []int64{42}, mock.AnythingOfType("time.Time")).
			Return(int64(1), nil).
			Once()

		require.NoError(t, f.useCase.Track(ctx, env, contents, false))
		f.contentRepo.AssertExpectations(t)
	})

	t.Run("Success_OtherGroupsAndContentsIgnored", func(t *testing.T) {
		f := newFetchFixture(false)
		env := envelopeWith(
			fetchAction(1, 10, 42, "view"),
			fetchAction(2, 11, 99, graphDomain.ActionGroupFetch),
			&graphDomain.Action{ID: 3, ClusterID: 1},
		)

		require.NoError(t, f.useCase.Track(ctx, env, contents, true))
		f.txManager.AssertNotCalled(t, "WithTx", mock.Anything)
	})

	t.Run("Error_MarkUsedFails", func(t *testing.T) {
		f := newFetchFixture(false)
		env := envelopeWith(fetchAction(1, 10, 42, graphDomain.ActionGroupFetch))

		f.txManager.On("WithTx", ctx).Return(nil).Once()
		f.contentActionRepo.On("MarkUsed", ctx, []int64{10}).Return(assert.AnError).Once()

		err := f.useCase.Track(ctx, env, contents, true)
		assert.ErrorIs(t, err, assert.AnError)
		f.contentRepo.AssertNotCalled(t, "MarkFetchedForDestruction", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestFetchUseCase_ReadAndTrack(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFetchFixture(false)
		env := envelopeWith(fetchAction(1, 10, 42, graphDomain.ActionGroupFetch))
		query := predicate.Eq(predicate.FieldID, int64(42))
		contents := []*graphDomain.Content{{ID: 42}}

		f.contentRepo.On("Find", ctx, predicate.AllOf(env.Objects, query)).Return(contents, nil).Once()
		f.txManager.On("WithTx", ctx).Return(nil).Once()
		f.contentActionRepo.On("MarkUsed", ctx, []int64{10}).Return(nil).Once()
		f.contentRepo.On("MarkFetchedForDestruction", ctx, []int64{42}, mock.AnythingOfType("time.Time")).
			Return(int64(1), nil).
			Once()

		got, err := f.useCase.ReadAndTrack(ctx, env, query, true)
		require.NoError(t, err)
		assert.Equal(t, contents, got)
		f.contentRepo.AssertExpectations(t)
	})

	t.Run("Success_NothingVisible", func(t *testing.T) {
		f := newFetchFixture(false)
		env := authzDomain.NewEnvelope(graphDomain.KindContent, authzDomain.ScopeView)

		f.contentRepo.On("Find", ctx, predicate.False()).Return([]*graphDomain.Content{}, nil).Once()

		got, err := f.useCase.ReadAndTrack(ctx, env, nil, true)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Error_FindFails", func(t *testing.T) {
		f := newFetchFixture(false)
		env := envelopeWith()

		f.contentRepo.On("Find", ctx, mock.Anything).Return(nil, assert.AnError).Once()

		_, err := f.useCase.ReadAndTrack(ctx, env, nil, true)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
