// Package usecase resolves credential sets into permission envelopes.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

// ActionQuery selects the candidate actions of one cluster.
type ActionQuery struct {
	ClusterFlexID uuid.UUID
	KeyHashes     []string
	Now           time.Time
	// ContentScope restricts content actions to contents matching it. nil keeps all.
	ContentScope predicate.Predicate
}

// ActionRepository loads actions for resolution.
type ActionRepository interface {
	// ListActive returns the actions of the query's cluster whose key hash is
	// listed and whose window contains Now, newest first, with their content
	// action loaded.
	ListActive(ctx context.Context, query ActionQuery) ([]*graphDomain.Action, error)

	// NormalizeKeyHash rewrites every action key hash from to to.
	NormalizeKeyHash(ctx context.Context, from, to string) error
}

// Sweeper removes expired contents and clusters.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) error
}

// ResolveRequest is the input of a resolution.
type ResolveRequest struct {
	Authset []authzDomain.Token
	Kind    graphDomain.EntityKind
	Scope   string
	// Base restricts the visible rows; nil means the whole table.
	Base predicate.Predicate
}

// ResolverUseCase turns credentials into permissions.
type ResolverUseCase interface {
	// Resolve evaluates every action unlocked by the authset. Malformed,
	// expired or undecryptable credentials never cause an error.
	Resolve(ctx context.Context, req ResolveRequest) (*authzDomain.Envelope, error)

	// ResolveCached resolves through cache. The cached envelope covers the whole
	// table and is narrowed to req.Base.
	ResolveCached(
		ctx context.Context,
		cache *authzDomain.PermissionCache,
		req ResolveRequest,
	) (*authzDomain.Envelope, error)
}
