// Package usecase implements read-once contents: reads through the tracker mark
// the fetch grants that authorized them as used and schedule fully fetched
// contents for destruction.
package usecase

import (
	"context"
	"time"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

// ContentRepository is the content persistence needed by the tracker.
type ContentRepository interface {
	// Find returns every content matching p.
	Find(ctx context.Context, p predicate.Predicate) ([]*graphDomain.Content, error)

	// MarkFetchedForDestruction sets markForDestruction to at for every id whose
	// deadline is unset, that has a used fetch content action and no unused one.
	// It is a single conditional update.
	MarkFetchedForDestruction(ctx context.Context, ids []int64, at time.Time) (int64, error)
}

// ContentActionRepository updates content action usage.
type ContentActionRepository interface {
	// MarkUsed flags the content actions as used.
	MarkUsed(ctx context.Context, ids []int64) error
}

// FetchUseCase reads contents and tracks fetch grants.
type FetchUseCase interface {
	// ReadAndTrack lists the contents visible under env that match query and
	// tracks the read. direct is false for reads reached through references.
	ReadAndTrack(
		ctx context.Context,
		env *authzDomain.Envelope,
		query predicate.Predicate,
		direct bool,
	) ([]*graphDomain.Content, error)

	// Track records a read of contents authorized by env.
	Track(ctx context.Context, env *authzDomain.Envelope, contents []*graphDomain.Content, direct bool) error
}
