package app

import (
	"context"
	"fmt"
	"sync"

	authzUsecase "github.com/devkral/secretgraph/internal/authz/usecase"
	deletionUsecase "github.com/devkral/secretgraph/internal/deletion/usecase"
	fetchUsecase "github.com/devkral/secretgraph/internal/fetch/usecase"
	graphHTTP "github.com/devkral/secretgraph/internal/graph/http"
	graphRepository "github.com/devkral/secretgraph/internal/graph/repository"
	graphService "github.com/devkral/secretgraph/internal/graph/service"
	graphUsecase "github.com/devkral/secretgraph/internal/graph/usecase"
	keyhashUsecase "github.com/devkral/secretgraph/internal/keyhash/usecase"
	transferUsecase "github.com/devkral/secretgraph/internal/transfer/usecase"
)

// ClusterRepository is the cluster persistence shared by every component.
type ClusterRepository interface {
	graphUsecase.ClusterRepository
	deletionUsecase.ClusterRepository
}

// ContentRepository is the content and reference persistence shared by every component.
type ContentRepository interface {
	graphUsecase.ContentRepository
	deletionUsecase.ContentRepository
	deletionUsecase.ReferenceRepository
	fetchUsecase.ContentRepository
	transferUsecase.ContentRepository
	keyhashUsecase.ContentRepository
}

// ActionRepository is the action persistence shared by every component.
type ActionRepository interface {
	graphUsecase.ActionRepository
	authzUsecase.ActionRepository
	fetchUsecase.ContentActionRepository
}

type graphComponents struct {
	clusterRepo    ClusterRepository
	contentRepo    ContentRepository
	actionRepo     ActionRepository
	valueStore     *graphService.BlobValueStore
	clusterUseCase graphUsecase.ClusterUseCase
	contentUseCase graphUsecase.ContentUseCase
	actionUseCase  graphUsecase.ActionUseCase
	clusterHandler *graphHTTP.ClusterHandler
	contentHandler *graphHTTP.ContentHandler

	clusterRepoInit    sync.Once
	contentRepoInit    sync.Once
	actionRepoInit     sync.Once
	valueStoreInit     sync.Once
	clusterUseCaseInit sync.Once
	contentUseCaseInit sync.Once
	actionUseCaseInit  sync.Once
	clusterHandlerInit sync.Once
	contentHandlerInit sync.Once
}

// ClusterRepository returns the cluster repository for the configured driver.
func (c *Container) ClusterRepository() (ClusterRepository, error) {
	var err error
	c.clusterRepoInit.Do(func() {
		c.clusterRepo, err = c.initClusterRepository()
		if err != nil {
			c.setInitError("clusterRepo", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("clusterRepo"); storedErr != nil {
		return nil, storedErr
	}
	return c.clusterRepo, nil
}

// ContentRepository returns the content repository for the configured driver.
func (c *Container) ContentRepository() (ContentRepository, error) {
	var err error
	c.contentRepoInit.Do(func() {
		c.contentRepo, err = c.initContentRepository()
		if err != nil {
			c.setInitError("contentRepo", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("contentRepo"); storedErr != nil {
		return nil, storedErr
	}
	return c.contentRepo, nil
}

// ActionRepository returns the action repository for the configured driver.
func (c *Container) ActionRepository() (ActionRepository, error) {
	var err error
	c.actionRepoInit.Do(func() {
		c.actionRepo, err = c.initActionRepository()
		if err != nil {
			c.setInitError("actionRepo", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("actionRepo"); storedErr != nil {
		return nil, storedErr
	}
	return c.actionRepo, nil
}

// ValueStore returns the blob store holding encrypted content values.
func (c *Container) ValueStore() (*graphService.BlobValueStore, error) {
	var err error
	c.valueStoreInit.Do(func() {
		c.valueStore, err = c.initValueStore()
		if err != nil {
			c.setInitError("valueStore", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("valueStore"); storedErr != nil {
		return nil, storedErr
	}
	return c.valueStore, nil
}

// ClusterUseCase returns the cluster use case.
func (c *Container) ClusterUseCase() (graphUsecase.ClusterUseCase, error) {
	var err error
	c.clusterUseCaseInit.Do(func() {
		c.clusterUseCase, err = c.initClusterUseCase()
		if err != nil {
			c.setInitError("clusterUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("clusterUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.clusterUseCase, nil
}

// ContentUseCase returns the content use case.
func (c *Container) ContentUseCase() (graphUsecase.ContentUseCase, error) {
	var err error
	c.contentUseCaseInit.Do(func() {
		c.contentUseCase, err = c.initContentUseCase()
		if err != nil {
			c.setInitError("contentUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("contentUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.contentUseCase, nil
}

// ActionUseCase returns the action use case.
func (c *Container) ActionUseCase() (graphUsecase.ActionUseCase, error) {
	var err error
	c.actionUseCaseInit.Do(func() {
		c.actionUseCase, err = c.initActionUseCase()
		if err != nil {
			c.setInitError("actionUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("actionUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.actionUseCase, nil
}

// ClusterHandler returns the cluster HTTP handler.
func (c *Container) ClusterHandler() (*graphHTTP.ClusterHandler, error) {
	var err error
	c.clusterHandlerInit.Do(func() {
		c.clusterHandler, err = c.initClusterHandler()
		if err != nil {
			c.setInitError("clusterHandler", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("clusterHandler"); storedErr != nil {
		return nil, storedErr
	}
	return c.clusterHandler, nil
}

// ContentHandler returns the content HTTP handler.
func (c *Container) ContentHandler() (*graphHTTP.ContentHandler, error) {
	var err error
	c.contentHandlerInit.Do(func() {
		c.contentHandler, err = c.initContentHandler()
		if err != nil {
			c.setInitError("contentHandler", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("contentHandler"); storedErr != nil {
		return nil, storedErr
	}
	return c.contentHandler, nil
}

// initClusterRepository creates the cluster repository based on the database driver.
func (c *Container) initClusterRepository() (ClusterRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for cluster repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return graphRepository.NewPostgreSQLClusterRepository(db), nil
	case "mysql":
		return graphRepository.NewMySQLClusterRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initContentRepository creates the content repository based on the database driver.
func (c *Container) initContentRepository() (ContentRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for content repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return graphRepository.NewPostgreSQLContentRepository(db), nil
	case "mysql":
		return graphRepository.NewMySQLContentRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initActionRepository creates the action repository based on the database driver.
func (c *Container) initActionRepository() (ActionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for action repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return graphRepository.NewPostgreSQLActionRepository(db), nil
	case "mysql":
		return graphRepository.NewMySQLActionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initValueStore opens the configured bucket.
func (c *Container) initValueStore() (*graphService.BlobValueStore, error) {
	store, err := graphService.OpenBlobValueStore(context.Background(), c.config.BlobBucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open value store: %w", err)
	}
	return store, nil
}

// initClusterUseCase creates the cluster use case with all its dependencies.
func (c *Container) initClusterUseCase() (graphUsecase.ClusterUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for cluster use case: %w", err)
	}

	clusterRepo, err := c.ClusterRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster repository for cluster use case: %w", err)
	}

	contentRepo, err := c.ContentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get content repository for cluster use case: %w", err)
	}

	actionRepo, err := c.ActionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get action repository for cluster use case: %w", err)
	}

	resolver, err := c.ResolverUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get resolver for cluster use case: %w", err)
	}

	hasher, err := c.Hasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get hasher for cluster use case: %w", err)
	}

	return graphUsecase.NewClusterUseCase(
		txManager,
		clusterRepo,
		contentRepo,
		actionRepo,
		resolver,
		c.AEADManager(),
		hasher,
		c.ActionHandlers(),
		c.Logger(),
	), nil
}

// initContentUseCase creates the content use case with all its dependencies.
func (c *Container) initContentUseCase() (graphUsecase.ContentUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for content use case: %w", err)
	}

	clusterRepo, err := c.ClusterRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster repository for content use case: %w", err)
	}

	contentRepo, err := c.ContentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get content repository for content use case: %w", err)
	}

	actionRepo, err := c.ActionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get action repository for content use case: %w", err)
	}

	valueStore, err := c.ValueStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get value store for content use case: %w", err)
	}

	resolver, err := c.ResolverUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get resolver for content use case: %w", err)
	}

	fetcher, err := c.FetchUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get fetch use case for content use case: %w", err)
	}

	deleter, err := c.DeletionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get deletion use case for content use case: %w", err)
	}

	transferer, err := c.TransferUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer use case for content use case: %w", err)
	}

	hasher, err := c.Hasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get hasher for content use case: %w", err)
	}

	return graphUsecase.NewContentUseCase(
		txManager,
		clusterRepo,
		contentRepo,
		actionRepo,
		valueStore,
		resolver,
		fetcher,
		deleter,
		transferer,
		c.AEADManager(),
		hasher,
		c.KeyNormalizer(),
		c.ActionHandlers(),
		c.Logger(),
	), nil
}

// initActionUseCase creates the action use case with all its dependencies.
func (c *Container) initActionUseCase() (graphUsecase.ActionUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for action use case: %w", err)
	}

	clusterRepo, err := c.ClusterRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster repository for action use case: %w", err)
	}

	actionRepo, err := c.ActionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get action repository for action use case: %w", err)
	}

	resolver, err := c.ResolverUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get resolver for action use case: %w", err)
	}

	hasher, err := c.Hasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get hasher for action use case: %w", err)
	}

	return graphUsecase.NewActionUseCase(
		txManager,
		clusterRepo,
		actionRepo,
		resolver,
		c.AEADManager(),
		hasher,
		c.ActionHandlers(),
	), nil
}

// initClusterHandler creates the cluster HTTP handler with all its dependencies.
func (c *Container) initClusterHandler() (*graphHTTP.ClusterHandler, error) {
	clusterUseCase, err := c.ClusterUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster use case for cluster handler: %w", err)
	}

	actionUseCase, err := c.ActionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get action use case for cluster handler: %w", err)
	}

	return graphHTTP.NewClusterHandler(clusterUseCase, actionUseCase, c.Logger()), nil
}

// initContentHandler creates the content HTTP handler with all its dependencies.
func (c *Container) initContentHandler() (*graphHTTP.ContentHandler, error) {
	contentUseCase, err := c.ContentUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get content use case for content handler: %w", err)
	}

	return graphHTTP.NewContentHandler(contentUseCase, c.Logger()), nil
}
