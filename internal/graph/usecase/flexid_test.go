package usecase

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/devkral/secretgraph/internal/errors"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

func TestAssignFlexID(t *testing.T) {
	t.Run("Success_RetriesCollisions", func(t *testing.T) {
		calls := 0
		flexID, err := assignFlexID(func(uuid.UUID) error {
			calls++
			if calls < 3 {
				return apperrors.ErrConflict
			}
			return nil
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, flexID)
		assert.Equal(t, 3, calls)
	})

	t.Run("Error_Exhausted", func(t *testing.T) {
		calls := 0
		_, err := assignFlexID(func(uuid.UUID) error {
			calls++
			return apperrors.Wrap(apperrors.ErrConflict, "flexid taken")
		})
		assert.ErrorIs(t, err, graphDomain.ErrFlexIDExhausted)
		assert.Equal(t, graphDomain.MaxFlexIDAttempts, calls)
	})

	t.Run("Error_StoreFailure", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := assignFlexID(func(uuid.UUID) error { return boom })
		assert.ErrorIs(t, err, boom)
	})
}
