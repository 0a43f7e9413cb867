package usecase

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/devkral/secretgraph/internal/database"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

type deletionUseCase struct {
	txManager   database.TxManager
	contentRepo ContentRepository
	refRepo     ReferenceRepository
	clusterRepo ClusterRepository
	valueStore  ValueStore
	logger      *slog.Logger
}

// NewDeletionUseCase creates a DeletionUseCase.
func NewDeletionUseCase(
	txManager database.TxManager,
	contentRepo ContentRepository,
	refRepo ReferenceRepository,
	clusterRepo ClusterRepository,
	valueStore ValueStore,
	logger *slog.Logger,
) DeletionUseCase {
	return &deletionUseCase{
		txManager:   txManager,
		contentRepo: contentRepo,
		refRepo:     refRepo,
		clusterRepo: clusterRepo,
		valueStore:  valueStore,
		logger:      logger,
	}
}

// OnContentDeleted must run before the row of id is removed, while the
// references pointing at it still exist.
//
// A source is a dependent when it references id with deleteRecursive=true, or
// when it references id with deleteRecursive=no_group in a group that has no
// reference left to any other target.
func (d *deletionUseCase) OnContentDeleted(ctx context.Context, id int64) ([]int64, error) {
	refs, err := d.refRepo.ListByTarget(ctx, id)
	if err != nil {
		return nil, err
	}

	var dependents []int64
	seen := make(map[int64]struct{})
	add := func(sourceID int64) {
		if _, ok := seen[sourceID]; ok || sourceID == id {
			return
		}
		seen[sourceID] = struct{}{}
		dependents = append(dependents, sourceID)
	}

	groups := make(map[int64]map[string]struct{})
	for _, ref := range refs {
		switch ref.DeleteRecursive {
		case graphDomain.DeleteRecursiveTrue:
			add(ref.SourceID)
		case graphDomain.DeleteRecursiveNoGroup:
			if groups[ref.SourceID] == nil {
				groups[ref.SourceID] = make(map[string]struct{})
			}
			groups[ref.SourceID][ref.Group] = struct{}{}
		}
	}

	for _, sourceID := range sortedKeys(groups) {
		if _, ok := seen[sourceID]; ok {
			continue
		}
		names := make([]string, 0, len(groups[sourceID]))
		for group := range groups[sourceID] {
			names = append(names, group)
		}
		sort.Strings(names)

		for _, group := range names {
			remaining, err := d.refRepo.CountInGroup(ctx, sourceID, group, id)
			if err != nil {
				return nil, err
			}
			if remaining == 0 {
				add(sourceID)
				break
			}
		}
	}

	return dependents, nil
}

// DeleteContents works through a queue instead of recursing, so long reference
// chains cannot exhaust the stack. Value blobs are removed after commit.
func (d *deletionUseCase) DeleteContents(ctx context.Context, ids []int64) ([]int64, error) {
	var deleted []int64
	var valueRefs []string

	err := d.txManager.WithTx(ctx, func(ctx context.Context) error {
		deleted, valueRefs = nil, nil
		queue := append([]int64(nil), ids...)
		visited := make(map[int64]struct{})

		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			if _, ok := visited[id]; ok {
				continue
			}
			visited[id] = struct{}{}

			dependents, err := d.OnContentDeleted(ctx, id)
			if err != nil {
				return err
			}

			valueRef, ok, err := d.contentRepo.Delete(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}

			deleted = append(deleted, id)
			if valueRef != "" {
				valueRefs = append(valueRefs, valueRef)
			}
			queue = append(queue, dependents...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ref := range valueRefs {
		if err := d.valueStore.Delete(ctx, ref); err != nil {
			d.logger.Error("failed to delete content value",
				slog.String("value_ref", ref),
				slog.Any("error", err),
			)
		}
	}

	if len(deleted) > 0 {
		d.logger.Debug("contents deleted", slog.Int("count", len(deleted)))
	}
	return deleted, nil
}

// Sweep deletes expired contents through the cascade, then empty expired clusters.
func (d *deletionUseCase) Sweep(ctx context.Context, now time.Time) error {
	expired, err := d.contentRepo.ListExpiredIDs(ctx, now)
	if err != nil {
		return err
	}
	if len(expired) > 0 {
		if _, err := d.DeleteContents(ctx, expired); err != nil {
			return err
		}
	}

	removed, err := d.clusterRepo.DeleteExpiredEmpty(ctx, now)
	if err != nil {
		return err
	}
	if removed > 0 {
		d.logger.Debug("expired clusters deleted", slog.Int64("count", removed))
	}
	return nil
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
