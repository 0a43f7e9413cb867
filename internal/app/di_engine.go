package app

import (
	"fmt"
	"net/http"
	"sync"

	authzService "github.com/devkral/secretgraph/internal/authz/service"
	authzUsecase "github.com/devkral/secretgraph/internal/authz/usecase"
	cryptoDomain "github.com/devkral/secretgraph/internal/crypto/domain"
	cryptoService "github.com/devkral/secretgraph/internal/crypto/service"
	deletionUsecase "github.com/devkral/secretgraph/internal/deletion/usecase"
	fetchUsecase "github.com/devkral/secretgraph/internal/fetch/usecase"
	keyhashUsecase "github.com/devkral/secretgraph/internal/keyhash/usecase"
	transferUsecase "github.com/devkral/secretgraph/internal/transfer/usecase"
)

type engineComponents struct {
	hasher          *cryptoService.MultiHasher
	aeadManager     cryptoService.AEADManager
	keyNormalizer   cryptoService.KeyNormalizer
	actionHandlers  *authzService.Registry
	resolverUseCase authzUsecase.ResolverUseCase
	fetchUseCase    fetchUsecase.FetchUseCase
	deletionUseCase deletionUsecase.DeletionUseCase
	transferUseCase transferUsecase.TransferUseCase
	keyHashUseCase  keyhashUsecase.KeyHashUseCase
	periodicSweeper *deletionUsecase.PeriodicSweeper

	hasherInit          sync.Once
	aeadManagerInit     sync.Once
	keyNormalizerInit   sync.Once
	actionHandlersInit  sync.Once
	resolverUseCaseInit sync.Once
	fetchUseCaseInit    sync.Once
	deletionUseCaseInit sync.Once
	transferUseCaseInit sync.Once
	keyHashUseCaseInit  sync.Once
	periodicSweeperInit sync.Once
}

// Hasher returns the digest service for the configured algorithms.
func (c *Container) Hasher() (*cryptoService.MultiHasher, error) {
	var err error
	c.hasherInit.Do(func() {
		c.hasher, err = c.initHasher()
		if err != nil {
			c.setInitError("hasher", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("hasher"); storedErr != nil {
		return nil, storedErr
	}
	return c.hasher, nil
}

// AEADManager returns the AEAD manager service.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.aeadManager = cryptoService.NewAEADManager()
	})
	return c.aeadManager
}

// KeyNormalizer returns the public key normalizer.
func (c *Container) KeyNormalizer() cryptoService.KeyNormalizer {
	c.keyNormalizerInit.Do(func() {
		c.keyNormalizer = cryptoService.NewPublicKeyNormalizer()
	})
	return c.keyNormalizer
}

// ActionHandlers returns the registry of action kind handlers.
func (c *Container) ActionHandlers() *authzService.Registry {
	c.actionHandlersInit.Do(func() {
		c.actionHandlers = authzService.NewRegistry()
	})
	return c.actionHandlers
}

// ResolverUseCase returns the permission resolver.
func (c *Container) ResolverUseCase() (authzUsecase.ResolverUseCase, error) {
	var err error
	c.resolverUseCaseInit.Do(func() {
		c.resolverUseCase, err = c.initResolverUseCase()
		if err != nil {
			c.setInitError("resolverUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("resolverUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.resolverUseCase, nil
}

// FetchUseCase returns the read-once tracker.
func (c *Container) FetchUseCase() (fetchUsecase.FetchUseCase, error) {
	var err error
	c.fetchUseCaseInit.Do(func() {
		c.fetchUseCase, err = c.initFetchUseCase()
		if err != nil {
			c.setInitError("fetchUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("fetchUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.fetchUseCase, nil
}

// DeletionUseCase returns the cascading deletion engine.
func (c *Container) DeletionUseCase() (deletionUsecase.DeletionUseCase, error) {
	var err error
	c.deletionUseCaseInit.Do(func() {
		c.deletionUseCase, err = c.initDeletionUseCase()
		if err != nil {
			c.setInitError("deletionUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("deletionUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.deletionUseCase, nil
}

// TransferUseCase returns the value transfer engine.
func (c *Container) TransferUseCase() (transferUsecase.TransferUseCase, error) {
	var err error
	c.transferUseCaseInit.Do(func() {
		c.transferUseCase, err = c.initTransferUseCase()
		if err != nil {
			c.setInitError("transferUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("transferUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.transferUseCase, nil
}

// KeyHashUseCase returns the key hash maintainer.
func (c *Container) KeyHashUseCase() (keyhashUsecase.KeyHashUseCase, error) {
	var err error
	c.keyHashUseCaseInit.Do(func() {
		c.keyHashUseCase, err = c.initKeyHashUseCase()
		if err != nil {
			c.setInitError("keyHashUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("keyHashUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.keyHashUseCase, nil
}

// PeriodicSweeper returns the background sweeper running every SweepInterval.
func (c *Container) PeriodicSweeper() (*deletionUsecase.PeriodicSweeper, error) {
	var err error
	c.periodicSweeperInit.Do(func() {
		c.periodicSweeper, err = c.initPeriodicSweeper()
		if err != nil {
			c.setInitError("periodicSweeper", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("periodicSweeper"); storedErr != nil {
		return nil, storedErr
	}
	return c.periodicSweeper, nil
}

// initHasher parses the configured digest algorithms; the first is canonical.
func (c *Container) initHasher() (*cryptoService.MultiHasher, error) {
	algorithms, err := cryptoDomain.ParseHashAlgorithms(c.config.HashAlgorithms)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hash algorithms: %w", err)
	}
	hasher, err := cryptoService.NewHasher(algorithms)
	if err != nil {
		return nil, fmt.Errorf("failed to create hasher: %w", err)
	}
	return hasher, nil
}

// initResolverUseCase creates the resolver with all its dependencies.
func (c *Container) initResolverUseCase() (authzUsecase.ResolverUseCase, error) {
	hasher, err := c.Hasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get hasher for resolver: %w", err)
	}

	actionRepo, err := c.ActionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get action repository for resolver: %w", err)
	}

	sweeper, err := c.DeletionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get deletion use case for resolver: %w", err)
	}

	baseUseCase := authzUsecase.NewResolverUseCase(
		c.AEADManager(),
		hasher,
		actionRepo,
		sweeper,
		c.ActionHandlers(),
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for resolver: %w", err)
		}
		return authzUsecase.NewResolverUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initFetchUseCase creates the fetch tracker with all its dependencies.
func (c *Container) initFetchUseCase() (fetchUsecase.FetchUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for fetch use case: %w", err)
	}

	contentRepo, err := c.ContentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get content repository for fetch use case: %w", err)
	}

	actionRepo, err := c.ActionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get action repository for fetch use case: %w", err)
	}

	baseUseCase := fetchUsecase.NewFetchUseCase(
		txManager,
		contentRepo,
		actionRepo,
		fetchUsecase.Options{
			DestructionDelay:  c.config.FetchDestructionDelay,
			OnlyDirectTrigger: c.config.OnlyDirectFetchTrigger,
		},
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for fetch use case: %w", err)
		}
		return fetchUsecase.NewFetchUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initDeletionUseCase creates the deletion engine with all its dependencies.
func (c *Container) initDeletionUseCase() (deletionUsecase.DeletionUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for deletion use case: %w", err)
	}

	contentRepo, err := c.ContentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get content repository for deletion use case: %w", err)
	}

	clusterRepo, err := c.ClusterRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster repository for deletion use case: %w", err)
	}

	valueStore, err := c.ValueStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get value store for deletion use case: %w", err)
	}

	baseUseCase := deletionUsecase.NewDeletionUseCase(
		txManager,
		contentRepo,
		contentRepo,
		clusterRepo,
		valueStore,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for deletion use case: %w", err)
		}
		return deletionUsecase.NewDeletionUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initTransferUseCase creates the transfer engine with its own HTTP client.
func (c *Container) initTransferUseCase() (transferUsecase.TransferUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for transfer use case: %w", err)
	}

	contentRepo, err := c.ContentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get content repository for transfer use case: %w", err)
	}

	valueStore, err := c.ValueStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get value store for transfer use case: %w", err)
	}

	hasher, err := c.Hasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get hasher for transfer use case: %w", err)
	}

	baseUseCase := transferUsecase.NewTransferUseCase(
		txManager,
		contentRepo,
		valueStore,
		c.AEADManager(),
		hasher,
		&http.Client{Timeout: c.config.TransferTimeout},
		transferUsecase.Options{
			Timeout:  c.config.TransferTimeout,
			MaxBytes: c.config.TransferMaxBytes,
		},
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for transfer use case: %w", err)
		}
		return transferUsecase.NewTransferUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initKeyHashUseCase creates the key hash maintainer with all its dependencies.
func (c *Container) initKeyHashUseCase() (keyhashUsecase.KeyHashUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for key hash use case: %w", err)
	}

	contentRepo, err := c.ContentRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get content repository for key hash use case: %w", err)
	}

	valueStore, err := c.ValueStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get value store for key hash use case: %w", err)
	}

	hasher, err := c.Hasher()
	if err != nil {
		return nil, fmt.Errorf("failed to get hasher for key hash use case: %w", err)
	}

	return keyhashUsecase.NewKeyHashUseCase(
		txManager,
		contentRepo,
		valueStore,
		hasher,
		c.config.KeyHashBatchSize,
		c.Logger(),
	), nil
}

// initPeriodicSweeper creates the background sweeper on top of the deletion engine.
func (c *Container) initPeriodicSweeper() (*deletionUsecase.PeriodicSweeper, error) {
	deletion, err := c.DeletionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get deletion use case for periodic sweeper: %w", err)
	}
	return deletionUsecase.NewPeriodicSweeper(c.config.SweepInterval, deletion, c.Logger()), nil
}
