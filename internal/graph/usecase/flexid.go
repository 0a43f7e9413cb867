package usecase

import (
	"github.com/google/uuid"

	apperrors "github.com/devkral/secretgraph/internal/errors"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

// assignFlexID calls store with random flexids until one is not taken.
// Collisions are reported by store as ErrConflict; any other error aborts.
func assignFlexID(store func(flexID uuid.UUID) error) (uuid.UUID, error) {
	for range graphDomain.MaxFlexIDAttempts {
		flexID := uuid.New()
		err := store(flexID)
		if err == nil {
			return flexID, nil
		}
		if !apperrors.Is(err, apperrors.ErrConflict) {
			return uuid.Nil, err
		}
	}
	return uuid.Nil, graphDomain.ErrFlexIDExhausted
}
