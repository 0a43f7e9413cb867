package service

import (
	"context"

	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

// ContentFinder looks up reference targets.
type ContentFinder interface {
	// First returns the first content matching p or apperrors.ErrNotFound.
	First(ctx context.Context, p predicate.Predicate) (*graphDomain.Content, error)
}
