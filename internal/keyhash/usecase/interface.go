// Package usecase migrates key hashes after the configured digest algorithms
// change: public keys get their canonical digest as content hash and every
// content tagged with an outdated digest gains the current ones.
package usecase

import (
	"context"

	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

// ContentRepository is the content persistence needed for the migration.
type ContentRepository interface {
	// ListPublicKeys returns up to limit PublicKey contents with an id above afterID, ordered by id.
	ListPublicKeys(ctx context.Context, afterID int64, limit int) ([]*graphDomain.Content, error)

	// ListIDs returns the ids of the contents matching p.
	ListIDs(ctx context.Context, p predicate.Predicate) ([]int64, error)

	// AddTags adds every tag to every content, skipping tags a content already has.
	AddTags(ctx context.Context, contentIDs []int64, tags []string) error

	// ReplacePublicKeyHash moves PublicKey contents hashed with any of from to to.
	ReplacePublicKeyHash(ctx context.Context, from []string, to string) (int64, error)
}

// ValueReader reads stored content values.
type ValueReader interface {
	Read(ctx context.Context, ref string) ([]byte, error)
}

// Report summarizes a migration run.
type Report struct {
	Scanned        int
	Migrated       int
	TaggedContents int
}

// KeyHashUseCase maintains key hashes.
type KeyHashUseCase interface {
	// Regenerate migrates every public key whose content hash is not canonical.
	// With force every public key is rechecked, not only those whose hash has
	// a foreign length. It is safe to run repeatedly.
	Regenerate(ctx context.Context, force bool) (*Report, error)
}
