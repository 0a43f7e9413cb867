package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	authzUsecase "github.com/devkral/secretgraph/internal/authz/usecase"
	cryptoService "github.com/devkral/secretgraph/internal/crypto/service"
	"github.com/devkral/secretgraph/internal/database"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

// flexIDBatchSize bounds the rows loaded per FillFlexIDs round.
const flexIDBatchSize = 100

// clusterUseCase implements ClusterUseCase.
type clusterUseCase struct {
	txManager   database.TxManager
	clusterRepo ClusterRepository
	contentRepo ContentRepository
	finder      *scopedFinder
	sealer      *actionSealer
	logger      *slog.Logger
}

// NewClusterUseCase creates a ClusterUseCase.
func NewClusterUseCase(
	txManager database.TxManager,
	clusterRepo ClusterRepository,
	contentRepo ContentRepository,
	actionRepo ActionRepository,
	resolver authzUsecase.ResolverUseCase,
	aeadManager cryptoService.AEADManager,
	hasher cryptoService.Hasher,
	handlers HandlerRegistry,
	logger *slog.Logger,
) ClusterUseCase {
	return &clusterUseCase{
		txManager:   txManager,
		clusterRepo: clusterRepo,
		contentRepo: contentRepo,
		finder: &scopedFinder{
			resolver:    resolver,
			clusterRepo: clusterRepo,
			contentRepo: contentRepo,
		},
		sealer: &actionSealer{
			aeadManager: aeadManager,
			hasher:      hasher,
			handlers:    handlers,
			actionRepo:  actionRepo,
		},
		logger: logger,
	}
}

// Create stores the cluster and its initial actions in one transaction.
func (c *clusterUseCase) Create(
	ctx context.Context,
	access Access,
	input CreateClusterInput,
) (*graphDomain.Cluster, error) {
	actions, err := c.sealer.seal(access, input.Actions, false)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cluster := &graphDomain.Cluster{
		Name:        input.Name,
		Description: input.Description,
		Public:      input.Public,
		PublicInfo:  input.PublicInfo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := assignFlexID(func(flexID uuid.UUID) error {
			cluster.FlexID = flexID
			return c.clusterRepo.Create(txCtx, cluster)
		}); err != nil {
			return err
		}
		return c.sealer.save(txCtx, actions, cluster.ID, 0)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("cluster created",
		slog.String("cluster", cluster.FlexID.String()),
		slog.Int("actions", len(actions)))
	return cluster, nil
}

// List returns the clusters visible to access.
func (c *clusterUseCase) List(
	ctx context.Context,
	access Access,
	offset, limit int,
) ([]*graphDomain.Cluster, error) {
	env, err := c.finder.envelope(ctx, access, graphDomain.KindCluster, authzDomain.ScopeView, nil)
	if err != nil {
		return nil, err
	}
	if env.Denied() {
		return []*graphDomain.Cluster{}, nil
	}
	return c.clusterRepo.List(ctx, env.Objects, offset, limit)
}

// ScheduleDeletion sets the destruction deadline of a cluster; nil clears it.
// The cluster is removed by the sweep once it is expired and empty.
func (c *clusterUseCase) ScheduleDeletion(ctx context.Context, access Access, raw string, at *time.Time) error {
	cluster, _, err := c.finder.cluster(ctx, access, raw, authzDomain.ScopeDelete)
	if err != nil {
		return err
	}
	if at != nil {
		utc := at.UTC()
		at = &utc
	}
	return c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return c.clusterRepo.SetMarkForDestruction(txCtx, cluster.ID, at)
	})
}

// FillFlexIDs assigns flexids to every cluster and content still lacking one.
// Each row is updated in its own transaction.
func (c *clusterUseCase) FillFlexIDs(ctx context.Context) (int, error) {
	clusters, err := c.fill(ctx, c.clusterRepo.ListMissingFlexID, c.clusterRepo.SetFlexID)
	if err != nil {
		return clusters, err
	}
	contents, err := c.fill(ctx, c.contentRepo.ListMissingFlexID, c.contentRepo.SetFlexID)
	return clusters + contents, err
}

func (c *clusterUseCase) fill(
	ctx context.Context,
	list func(ctx context.Context, limit int) ([]int64, error),
	set func(ctx context.Context, id int64, flexID uuid.UUID) error,
) (int, error) {
	filled := 0
	for {
		ids, err := list(ctx, flexIDBatchSize)
		if err != nil {
			return filled, err
		}

		for _, id := range ids {
			err := c.txManager.WithTx(ctx, func(txCtx context.Context) error {
				_, err := assignFlexID(func(flexID uuid.UUID) error {
					return set(txCtx, id, flexID)
				})
				return err
			})
			if err != nil {
				return filled, err
			}
			filled++
		}

		if len(ids) < flexIDBatchSize {
			return filled, nil
		}
	}
}
