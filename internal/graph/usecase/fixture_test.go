package usecase

import (
	"bytes"
	"encoding/base64"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	authzService "github.com/devkral/secretgraph/internal/authz/service"
	authzUsecase "github.com/devkral/secretgraph/internal/authz/usecase"
	authzMocks "github.com/devkral/secretgraph/internal/authz/usecase/mocks"
	cryptoDomain "github.com/devkral/secretgraph/internal/crypto/domain"
	cryptoService "github.com/devkral/secretgraph/internal/crypto/service"
	databaseMocks "github.com/devkral/secretgraph/internal/database/mocks"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

type graphFixture struct {
	txManager   *databaseMocks.MockTxManager
	clusterRepo *mockClusterRepository
	contentRepo *mockContentRepository
	actionRepo  *mockActionRepository
	values      *mockValueStore
	resolver    *authzMocks.MockResolverUseCase
	fetcher     *mockFetchUseCase
	deleter     *mockContentDeleter
	transferer  *mockTransferUseCase
	hasher      *cryptoService.MultiHasher

	cluster *graphDomain.Cluster
	access  Access

	contents ContentUseCase
	clusters ClusterUseCase
	actions  ActionUseCase
}

func newGraphFixture(t *testing.T) *graphFixture {
	t.Helper()
	hasher, err := cryptoService.NewHasher([]cryptoDomain.HashAlgorithm{cryptoDomain.SHA512, cryptoDomain.SHA256})
	require.NoError(t, err)

	f := &graphFixture{
		txManager:   &databaseMocks.MockTxManager{},
		clusterRepo: &mockClusterRepository{},
		contentRepo: &mockContentRepository{},
		actionRepo:  &mockActionRepository{},
		values:      &mockValueStore{},
		resolver:    &authzMocks.MockResolverUseCase{},
		fetcher:     &mockFetchUseCase{},
		deleter:     &mockContentDeleter{},
		transferer:  &mockTransferUseCase{},
		hasher:      hasher,
		cluster:     &graphDomain.Cluster{ID: 3, FlexID: uuid.New()},
	}
	f.access = Access{
		Cache:   authzDomain.NewPermissionCache(),
		Authset: []authzDomain.Token{{ClusterFlexID: f.cluster.FlexID, Key: testKey(1)}},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	aeadManager := cryptoService.NewAEADManager()
	registry := authzService.NewRegistry()

	f.contents = NewContentUseCase(
		f.txManager, f.clusterRepo, f.contentRepo, f.actionRepo, f.values,
		f.resolver, f.fetcher, f.deleter, f.transferer,
		aeadManager, hasher, cryptoService.NewPublicKeyNormalizer(), registry, logger,
	)
	f.clusters = NewClusterUseCase(
		f.txManager, f.clusterRepo, f.contentRepo, f.actionRepo, f.resolver,
		aeadManager, hasher, registry, logger,
	)
	f.actions = NewActionUseCase(f.txManager, f.clusterRepo, f.actionRepo, f.resolver, aeadManager, hasher, registry)
	return f
}

func (f *graphFixture) assertExpectations(t *testing.T) {
	f.txManager.AssertExpectations(t)
	f.clusterRepo.AssertExpectations(t)
	f.contentRepo.AssertExpectations(t)
	f.actionRepo.AssertExpectations(t)
	f.values.AssertExpectations(t)
	f.resolver.AssertExpectations(t)
	f.fetcher.AssertExpectations(t)
	f.deleter.AssertExpectations(t)
	f.transferer.AssertExpectations(t)
}

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, cryptoDomain.KeySize)
}

func testNonce() string {
	nonce := make([]byte, cryptoDomain.NonceSize)
	for i := range nonce {
		nonce[i] = byte(i + 1)
	}
	return base64.StdEncoding.EncodeToString(nonce)
}

// granted returns an envelope exposing every row.
func granted(kind graphDomain.EntityKind, scope string) *authzDomain.Envelope {
	env := authzDomain.NewEnvelope(kind, scope)
	env.Objects = predicate.True()
	return env
}

// withRequiredKeys attaches required keys to the fixture cluster.
func (f *graphFixture) withRequiredKeys(env *authzDomain.Envelope, keys ...string) *authzDomain.Envelope {
	env.RequiredKeysClusters[f.cluster.ID] = authzDomain.Requirements{
		{Action: authzDomain.ActionUpdate, KeyHash: "granting"}: {ActionID: 1, RequiredKeys: keys},
	}
	return env
}

func (f *graphFixture) grant(kind graphDomain.EntityKind, scope string, env *authzDomain.Envelope) {
	f.resolver.On("ResolveCached", mock.Anything, f.access.Cache, mock.MatchedBy(func(req authzUsecase.ResolveRequest) bool {
		return req.Kind == kind && req.Scope == scope
	})).Return(env, nil)
}

func (f *graphFixture) expectCluster(scope string, env *authzDomain.Envelope) {
	f.grant(graphDomain.KindCluster, scope, env)
	f.clusterRepo.On("Get", mock.Anything, mock.Anything).Return(f.cluster, nil).Once()
}

func (f *graphFixture) expectReferenceTargets() {
	f.grant(graphDomain.KindContent, authzDomain.ScopeView, granted(graphDomain.KindContent, authzDomain.ScopeView))
}

// publicKey returns a stored PublicKey of the fixture cluster.
func (f *graphFixture) publicKey(id int64, der []byte) *graphDomain.Content {
	hash := f.hasher.Canonical(der)
	return &graphDomain.Content{
		ID:          id,
		FlexID:      uuid.New(),
		ClusterID:   f.cluster.ID,
		ContentHash: &hash,
		Tags:        []string{"type=PublicKey", "key_hash=" + hash, "state=public"},
	}
}
