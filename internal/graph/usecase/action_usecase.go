package usecase

import (
	"context"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	authzUsecase "github.com/devkral/secretgraph/internal/authz/usecase"
	cryptoService "github.com/devkral/secretgraph/internal/crypto/service"
	"github.com/devkral/secretgraph/internal/database"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

// actionUseCase implements ActionUseCase.
type actionUseCase struct {
	txManager database.TxManager
	finder    *scopedFinder
	sealer    *actionSealer
}

// NewActionUseCase creates an ActionUseCase.
func NewActionUseCase(
	txManager database.TxManager,
	clusterRepo ClusterRepository,
	actionRepo ActionRepository,
	resolver authzUsecase.ResolverUseCase,
	aeadManager cryptoService.AEADManager,
	hasher cryptoService.Hasher,
	handlers HandlerRegistry,
) ActionUseCase {
	return &actionUseCase{
		txManager: txManager,
		finder: &scopedFinder{
			resolver:    resolver,
			clusterRepo: clusterRepo,
		},
		sealer: &actionSealer{
			aeadManager: aeadManager,
			hasher:      hasher,
			handlers:    handlers,
			actionRepo:  actionRepo,
		},
	}
}

// Create requires the manage scope on the cluster.
func (a *actionUseCase) Create(
	ctx context.Context,
	access Access,
	cluster string,
	inputs []ActionInput,
) ([]*graphDomain.Action, error) {
	target, _, err := a.finder.cluster(ctx, access, cluster, authzDomain.ScopeManage)
	if err != nil {
		return nil, err
	}

	actions, err := a.sealer.seal(access, inputs, false)
	if err != nil {
		return nil, err
	}

	err = a.txManager.WithTx(ctx, func(txCtx context.Context) error {
		return a.sealer.save(txCtx, actions, target.ID, 0)
	})
	if err != nil {
		return nil, err
	}
	return actions, nil
}
