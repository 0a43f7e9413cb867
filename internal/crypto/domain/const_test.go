package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHashAlgorithms(t *testing.T) {
	t.Run("Success_KeepsOrder", func(t *testing.T) {
		algs, err := ParseHashAlgorithms("sha512, SHA256,blake3")
		require.NoError(t, err)
		assert.Equal(t, []HashAlgorithm{SHA512, SHA256, BLAKE3}, algs)
	})

	t.Run("Success_DropsDuplicates", func(t *testing.T) {
		algs, err := ParseHashAlgorithms("blake2b,sha256,blake2b")
		require.NoError(t, err)
		assert.Equal(t, []HashAlgorithm{BLAKE2B, SHA256}, algs)
	})

	t.Run("Error_Unknown", func(t *testing.T) {
		_, err := ParseHashAlgorithms("sha512,md5")
		assert.ErrorIs(t, err, ErrUnsupportedHashAlgorithm)
	})

	t.Run("Error_Empty", func(t *testing.T) {
		_, err := ParseHashAlgorithms(" , ")
		assert.ErrorIs(t, err, ErrNoHashAlgorithms)
	})
}
