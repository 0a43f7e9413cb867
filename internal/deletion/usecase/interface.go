// Package usecase implements cascading content deletion and the lazy sweep of
// expired contents and empty clusters.
package usecase

import (
	"context"
	"time"

	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

// ContentRepository is the content persistence needed by the deletion engine.
type ContentRepository interface {
	// Delete removes the content row; references from and to it cascade in the store.
	// It returns the value reference of the removed row and whether a row was removed.
	Delete(ctx context.Context, id int64) (valueRef string, deleted bool, err error)
	// ListExpiredIDs returns the contents whose destruction deadline has passed.
	ListExpiredIDs(ctx context.Context, now time.Time) ([]int64, error)
}

// ReferenceRepository is the reference persistence needed by the deletion engine.
type ReferenceRepository interface {
	// ListByTarget returns every reference pointing at targetID.
	ListByTarget(ctx context.Context, targetID int64) ([]*graphDomain.ContentReference, error)
	// CountInGroup counts references from sourceID in group whose target is not excludeTargetID.
	CountInGroup(ctx context.Context, sourceID int64, group string, excludeTargetID int64) (int64, error)
}

// ClusterRepository is the cluster persistence needed by the sweep.
type ClusterRepository interface {
	// DeleteExpiredEmpty removes expired clusters without contents.
	DeleteExpiredEmpty(ctx context.Context, now time.Time) (int64, error)
}

// ValueStore removes encrypted content values.
type ValueStore interface {
	Delete(ctx context.Context, ref string) error
}

// DeletionUseCase deletes contents together with everything that depends on them.
type DeletionUseCase interface {
	// OnContentDeleted returns the contents that must be deleted because id is deleted.
	OnContentDeleted(ctx context.Context, id int64) ([]int64, error)

	// DeleteContents deletes ids and their dependents in one transaction and
	// returns every deleted id.
	DeleteContents(ctx context.Context, ids []int64) ([]int64, error)

	// Sweep deletes expired contents and expired empty clusters.
	Sweep(ctx context.Context, now time.Time) error
}
