package service

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/devkral/secretgraph/internal/crypto/domain"
	cryptoService "github.com/devkral/secretgraph/internal/crypto/service"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	metadataDomain "github.com/devkral/secretgraph/internal/metadata/domain"
)

var (
	hashA = strings.Repeat("a", 43) + "="
	hashB = strings.Repeat("b", 43) + "="
)

func newTestTagTransformer(t *testing.T) *TagTransformer {
	t.Helper()
	hasher, err := cryptoService.NewHasher([]cryptoDomain.HashAlgorithm{cryptoDomain.SHA256})
	require.NoError(t, err)
	return NewTagTransformer(hasher, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTagTransformer_Append(t *testing.T) {
	transformer := newTestTagTransformer(t)

	t.Run("Success_UnionWithOld", func(t *testing.T) {
		tags, keyHashes, err := transformer.Transform(
			[]string{"name=b", "state=public", "key_hash=" + hashA},
			[]string{"id=xyz", "name=a", "state=draft", "type=File", "key_hash=" + hashB, "transfer"},
			graphDomain.OperationAppend,
		)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"key_hash=" + hashA,
			"key_hash=" + hashB,
			"name=a",
			"name=b",
			"state=public",
			"transfer",
			"type=File",
		}, tags.Strings())
		assert.Equal(t, metadataDomain.NewHashSet(hashA, hashB), keyHashes)
	})

	t.Run("Success_IdTagIgnored", func(t *testing.T) {
		tags, _, err := transformer.Transform([]string{"id=forged", "type=File"}, nil, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"type=File"}, tags.Strings())
	})

	t.Run("Success_ShortKeyHashKeptButNotCollected", func(t *testing.T) {
		tags, keyHashes, err := transformer.Transform([]string{"key_hash=short"}, nil, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"key_hash=short"}, tags.Strings())
		assert.Empty(t, keyHashes)
	})

	t.Run("Success_Idempotent", func(t *testing.T) {
		input := []string{"type=File", "state=draft", "name=x", "name=y", "flag", "key_hash=" + hashA}

		first, firstHashes, err := transformer.Transform(input, nil, graphDomain.OperationAppend)
		require.NoError(t, err)

		second, secondHashes, err := transformer.Transform(first.Strings(), first.Strings(), graphDomain.OperationAppend)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, firstHashes, secondHashes)
	})

	t.Run("Error_TypeChange", func(t *testing.T) {
		_, _, err := transformer.Transform([]string{"type=Config"}, []string{"type=File"}, graphDomain.OperationAppend)
		assert.ErrorIs(t, err, graphDomain.ErrTypeChange)
	})

	t.Run("Error_MultipleStates", func(t *testing.T) {
		_, _, err := transformer.Transform([]string{"state=draft", "state=public"}, nil, "")
		assert.ErrorIs(t, err, graphDomain.ErrMultipleStates)
	})

	t.Run("Error_MultipleTypes", func(t *testing.T) {
		_, _, err := transformer.Transform([]string{"type=File", "type=Text"}, nil, "")
		assert.ErrorIs(t, err, graphDomain.ErrMultipleTypes)
	})

	t.Run("Error_StateFlag", func(t *testing.T) {
		_, _, err := transformer.Transform([]string{"state"}, nil, "")
		assert.ErrorIs(t, err, metadataDomain.ErrStateFlag)
	})

	t.Run("Error_TagTooLong", func(t *testing.T) {
		_, _, err := transformer.Transform([]string{"name=" + strings.Repeat("x", 8000)}, nil, "")
		assert.ErrorIs(t, err, graphDomain.ErrTagTooLong)
	})

	t.Run("Error_TagFlagCollision", func(t *testing.T) {
		_, _, err := transformer.Transform([]string{"name=a", "name"}, nil, "")
		assert.ErrorIs(t, err, graphDomain.ErrTagFlagCollision)
	})

	t.Run("Error_PrivateKeyWithoutKeyIdentity", func(t *testing.T) {
		_, _, err := transformer.Transform([]string{"type=PrivateKey", "state=internal"}, nil, "")
		assert.ErrorIs(t, err, graphDomain.ErrMissingKeyIdentity)
	})

	t.Run("Success_PrivateKeyWithKeyTag", func(t *testing.T) {
		_, _, err := transformer.Transform([]string{"type=PrivateKey", "key=" + hashA}, nil, "")
		assert.NoError(t, err)
	})

	// A key_hash tag alone identifies the private key as well; keys created
	// from a public key carry only its hashes.
	t.Run("Success_PrivateKeyWithOnlyKeyHashTag", func(t *testing.T) {
		tags, keyHashes, err := transformer.Transform([]string{"type=PrivateKey", "key_hash=" + hashA}, nil, "")
		require.NoError(t, err)
		assert.Empty(t, tags[graphDomain.TagKey])
		assert.True(t, keyHashes.Contains(hashA))
	})
}

func TestTagTransformer_Replace(t *testing.T) {
	transformer := newTestTagTransformer(t)

	t.Run("Success_TouchedNamesReplaced", func(t *testing.T) {
		tags, keyHashes, err := transformer.Transform(
			[]string{"name=new", "key_hash=" + hashA},
			[]string{"name=old", "other=kept", "type=File", "key_hash=" + hashB, "flag"},
			graphDomain.OperationReplace,
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"flag", "key_hash=" + hashA, "name=new", "other=kept", "type=File"}, tags.Strings())
		assert.Equal(t, metadataDomain.NewHashSet(hashA), keyHashes)
	})

	t.Run("Success_OldKeyHashKeptWithoutNewOnes", func(t *testing.T) {
		_, keyHashes, err := transformer.Transform(
			[]string{"name=new"},
			[]string{"key_hash=" + hashB},
			graphDomain.OperationReplace,
		)
		require.NoError(t, err)
		assert.Equal(t, metadataDomain.NewHashSet(hashB), keyHashes)
	})
}

func TestTagTransformer_Remove(t *testing.T) {
	transformer := newTestTagTransformer(t)
	old := []string{"id=abc", "type=File", "state=draft", "name=a", "name=b", "nickname=c", "key_hash=" + hashA}

	t.Run("Success_PrefixRemoval", func(t *testing.T) {
		tags, keyHashes, err := transformer.Transform([]string{"name="}, old, graphDomain.OperationRemove)
		require.NoError(t, err)
		assert.Equal(t, []string{"key_hash=" + hashA, "nickname=c", "state=draft", "type=File"}, tags.Strings())
		assert.Equal(t, metadataDomain.NewHashSet(hashA), keyHashes)
	})

	t.Run("Success_ReservedPrefixesNotRemoved", func(t *testing.T) {
		tags, _, err := transformer.Transform([]string{"state=", "type=", "id="}, old, graphDomain.OperationRemove)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"key_hash=" + hashA, "name=a", "name=b", "nickname=c", "state=draft", "type=File",
		}, tags.Strings())
	})

	t.Run("Success_NoOldTags", func(t *testing.T) {
		tags, keyHashes, err := transformer.Transform([]string{"name="}, nil, graphDomain.OperationRemove)
		require.NoError(t, err)
		assert.Empty(t, tags)
		assert.Empty(t, keyHashes)
	})
}

func TestTagTransformer_ExtractKeyHashes(t *testing.T) {
	transformer := newTestTagTransformer(t)

	keyHashes, contentType := transformer.ExtractKeyHashes([]string{"type=PublicKey", "key_hash=" + hashA, "key_hash=x"})
	assert.Equal(t, metadataDomain.NewHashSet(hashA), keyHashes)
	assert.Equal(t, graphDomain.TypePublicKey, contentType)
}
