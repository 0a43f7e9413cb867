package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZero(t *testing.T) {
	t.Run("clears key material", func(t *testing.T) {
		key := []byte{1, 2, 3, 4, 5}
		Zero(key)
		assert.Equal(t, make([]byte, 5), key)
	})

	t.Run("nil slice", func(t *testing.T) {
		assert.NotPanics(t, func() { Zero(nil) })
	})
}
