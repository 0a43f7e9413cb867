package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/devkral/secretgraph/internal/errors"
)

func TestBlobValueStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Memory", func(t *testing.T) {
		store, err := OpenBlobValueStore(ctx, "mem://")
		require.NoError(t, err)
		defer func() { assert.NoError(t, store.Close()) }()

		require.NoError(t, store.Write(ctx, "contents/a", []byte("ciphertext")))
		value, err := store.Read(ctx, "contents/a")
		require.NoError(t, err)
		assert.Equal(t, []byte("ciphertext"), value)

		require.NoError(t, store.Write(ctx, "contents/a", []byte("replaced")))
		value, err = store.Read(ctx, "contents/a")
		require.NoError(t, err)
		assert.Equal(t, []byte("replaced"), value)

		require.NoError(t, store.Delete(ctx, "contents/a"))
		_, err = store.Read(ctx, "contents/a")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Success_DeleteMissing", func(t *testing.T) {
		store, err := OpenBlobValueStore(ctx, "mem://")
		require.NoError(t, err)
		defer func() { assert.NoError(t, store.Close()) }()

		assert.NoError(t, store.Delete(ctx, "contents/missing"))
	})

	t.Run("Success_File", func(t *testing.T) {
		dir := t.TempDir()
		store, err := OpenBlobValueStore(ctx, "file://"+filepath.ToSlash(dir)+"?no_tmp_dir=true")
		require.NoError(t, err)
		defer func() { assert.NoError(t, store.Close()) }()

		require.NoError(t, store.Write(ctx, "contents/b", []byte("on disk")))
		raw, err := os.ReadFile(filepath.Join(dir, "contents", "b"))
		require.NoError(t, err)
		assert.Equal(t, []byte("on disk"), raw)
	})

	t.Run("Error_InvalidURL", func(t *testing.T) {
		store, err := OpenBlobValueStore(ctx, "invalid://bucket")
		assert.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "failed to open value bucket")
	})
}
