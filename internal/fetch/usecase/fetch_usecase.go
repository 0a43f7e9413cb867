package usecase

import (
	"context"
	"log/slog"
	"sort"
	"time"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	"github.com/devkral/secretgraph/internal/database"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

// Options configures the tracker.
type Options struct {
	// DestructionDelay is added to the read time to get the destruction deadline.
	DestructionDelay time.Duration
	// OnlyDirectTrigger ignores reads that were not requested directly.
	OnlyDirectTrigger bool
}

type fetchUseCase struct {
	txManager         database.TxManager
	contentRepo       ContentRepository
	contentActionRepo ContentActionRepository
	opts              Options
	logger            *slog.Logger
}

// NewFetchUseCase creates a FetchUseCase.
func NewFetchUseCase(
	txManager database.TxManager,
	contentRepo ContentRepository,
	contentActionRepo ContentActionRepository,
	opts Options,
	logger *slog.Logger,
) FetchUseCase {
	return &fetchUseCase{
		txManager:         txManager,
		contentRepo:       contentRepo,
		contentActionRepo: contentActionRepo,
		opts:              opts,
		logger:            logger,
	}
}

// ReadAndTrack lists the contents and tracks the read in one step.
func (f *fetchUseCase) ReadAndTrack(
	ctx context.Context,
	env *authzDomain.Envelope,
	query predicate.Predicate,
	direct bool,
) ([]*graphDomain.Content, error) {
	contents, err := f.contentRepo.Find(ctx, predicate.AllOf(env.Objects, query))
	if err != nil {
		return nil, err
	}
	if err := f.Track(ctx, env, contents, direct); err != nil {
		return nil, err
	}
	return contents, nil
}

// Track marks the fetch content actions of env that point into contents as
// used, then schedules the contents without pending fetch grants.
func (f *fetchUseCase) Track(
	ctx context.Context,
	env *authzDomain.Envelope,
	contents []*graphDomain.Content,
	direct bool,
) error {
	if !direct && f.opts.OnlyDirectTrigger {
		return nil
	}
	if len(contents) == 0 || env == nil {
		return nil
	}

	read := make(map[int64]struct{}, len(contents))
	for _, c := range contents {
		read[c.ID] = struct{}{}
	}

	var contentActionIDs []int64
	touched := make(map[int64]struct{})
	for _, resolved := range env.Actions {
		ca := resolved.Action.ContentAction
		if ca == nil || ca.Group != graphDomain.ActionGroupFetch {
			continue
		}
		if _, ok := read[ca.ContentID]; !ok {
			continue
		}
		contentActionIDs = append(contentActionIDs, ca.ID)
		touched[ca.ContentID] = struct{}{}
	}
	if len(contentActionIDs) == 0 {
		return nil
	}

	contentIDs := make([]int64, 0, len(touched))
	for id := range touched {
		contentIDs = append(contentIDs, id)
	}
	sort.Slice(contentIDs, func(i, j int) bool { return contentIDs[i] < contentIDs[j] })

	deadline := time.Now().Add(f.opts.DestructionDelay)
	return f.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := f.contentActionRepo.MarkUsed(ctx, contentActionIDs); err != nil {
			return err
		}
		scheduled, err := f.contentRepo.MarkFetchedForDestruction(ctx, contentIDs, deadline)
		if err != nil {
			return err
		}
		if scheduled > 0 {
			f.logger.Debug("fetched contents scheduled for destruction",
				slog.Int64("count", scheduled),
				slog.Time("at", deadline),
			)
		}
		return nil
	})
}
