package domain

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/devkral/secretgraph/internal/errors"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestParseToken(t *testing.T) {
	flexID := uuid.New()
	key := base64.StdEncoding.EncodeToString(testKey(1))

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "Success_FlexID", raw: flexID.String() + ":" + key},
		{name: "Success_GlobalID", raw: graphDomain.EncodeGlobalID("Cluster", flexID.String()) + ":" + key},
		{name: "Failure_ContentGlobalID", raw: graphDomain.EncodeGlobalID("Content", flexID.String()) + ":" + key, wantErr: true},
		{name: "Failure_NoSeparator", raw: flexID.String(), wantErr: true},
		{name: "Failure_ShortKey", raw: flexID.String() + ":" + base64.StdEncoding.EncodeToString([]byte("short")), wantErr: true},
		{name: "Failure_NotBase64", raw: flexID.String() + ":!!!", wantErr: true},
		{name: "Failure_BadCluster", raw: "nope:" + key, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ParseToken(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, flexID, token.ClusterFlexID)
			assert.Equal(t, testKey(1), token.Key)
		})
	}
}

func TestParseAuthset(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	keyA := base64.StdEncoding.EncodeToString(testKey(1))
	keyB := base64.StdEncoding.EncodeToString(testKey(2))

	t.Run("Success_SkipsBlankAndMalformed", func(t *testing.T) {
		tokens := ParseAuthset(
			first.String()+":"+keyA+", ,garbage",
			"",
			second.String()+":"+keyB,
		)
		require.Len(t, tokens, 2)
		assert.Equal(t, first, tokens[0].ClusterFlexID)
		assert.Equal(t, second, tokens[1].ClusterFlexID)
	})

	t.Run("Success_DropsDuplicates", func(t *testing.T) {
		tokens := ParseAuthset(first.String()+":"+keyA, first.String()+":"+keyA)
		assert.Len(t, tokens, 1)
	})

	t.Run("Success_NothingValid", func(t *testing.T) {
		assert.Empty(t, ParseAuthset("", " , ", "x:y"))
	})

	t.Run("Success_NormalizeIsOrderIndependent", func(t *testing.T) {
		a := ParseAuthset(first.String()+":"+keyA, second.String()+":"+keyB)
		b := ParseAuthset(second.String()+":"+keyB, first.String()+":"+keyA)
		assert.Equal(t, NormalizeAuthset(a), NormalizeAuthset(b))
	})
}

func TestParsePayload(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		payload, err := ParsePayload([]byte(`{"action":"update","allowedTags":["name"]}`))
		require.NoError(t, err)
		assert.Equal(t, "update", payload.Kind)
		assert.True(t, payload.Has("allowedTags"))

		var tags []string
		require.NoError(t, payload.Decode("allowedTags", &tags))
		assert.Equal(t, []string{"name"}, tags)

		var missing []string
		require.NoError(t, payload.Decode("requiredKeys", &missing))
		assert.Nil(t, missing)
	})

	t.Run("Error_NotAnObject", func(t *testing.T) {
		_, err := ParsePayload([]byte(`[1,2]`))
		assert.ErrorIs(t, err, ErrInvalidPayload)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})

	t.Run("Error_MissingAction", func(t *testing.T) {
		_, err := ParsePayload([]byte(`{"foo":1}`))
		assert.ErrorIs(t, err, ErrMissingActionKind)
	})

	t.Run("Error_ActionNotString", func(t *testing.T) {
		_, err := ParsePayload([]byte(`{"action":3}`))
		assert.ErrorIs(t, err, ErrMissingActionKind)
	})
}

func TestForm_AllowsTag(t *testing.T) {
	tests := []struct {
		name     string
		form     *Form
		tag      string
		expected bool
	}{
		{name: "Success_NilForm", form: nil, tag: "anything", expected: true},
		{name: "Success_Unrestricted", form: &Form{}, tag: "name=x", expected: true},
		{name: "Success_ByName", form: &Form{AllowedTags: []string{"name"}}, tag: "name=x", expected: true},
		{name: "Success_ByPrefix", form: &Form{AllowedTags: []string{"name="}}, tag: "name=x", expected: true},
		{name: "Success_Flag", form: &Form{AllowedTags: []string{"hidden"}}, tag: "hidden", expected: true},
		{name: "Failure_OtherName", form: &Form{AllowedTags: []string{"name"}}, tag: "state=public", expected: false},
		{name: "Failure_NameIsNotPrefix", form: &Form{AllowedTags: []string{"na"}}, tag: "name=x", expected: false},
		{name: "Failure_EmptyList", form: &Form{AllowedTags: []string{}}, tag: "name=x", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.form.AllowsTag(tt.tag))
		})
	}
}

func TestEnvelope(t *testing.T) {
	t.Run("Success_NewEnvelopeGrantsNothing", func(t *testing.T) {
		env := NewEnvelope(graphDomain.KindContent, ScopeView)
		assert.True(t, predicate.IsFalse(env.Objects))
		assert.False(t, env.Denied())
		assert.Empty(t, env.ClusterIDs())
	})

	t.Run("Success_Narrow", func(t *testing.T) {
		env := NewEnvelope(graphDomain.KindContent, ScopeView)
		env.Objects = predicate.Eq(predicate.FieldClusterID, int64(1))

		narrowed := env.Narrow(predicate.Eq(predicate.FieldID, int64(5)))
		assert.Equal(t, predicate.AllOf(
			predicate.Eq(predicate.FieldClusterID, int64(1)),
			predicate.Eq(predicate.FieldID, int64(5)),
		), narrowed.Objects)
		assert.Equal(t, predicate.Eq(predicate.FieldClusterID, int64(1)), env.Objects)
	})

	t.Run("Success_RequiredKeysAndTags", func(t *testing.T) {
		env := NewEnvelope(graphDomain.KindContent, ScopeUpdate)
		env.RequiredKeysClusters[1] = Requirements{
			{Action: ActionUpdate, KeyHash: "h1"}: {ActionID: 10, RequiredKeys: []string{"k1"}, AllowedTags: []string{"name"}},
		}
		env.RequiredKeysContents[7] = Requirements{
			{Action: ActionUpdate, KeyHash: "h2"}: {ActionID: 11, RequiredKeys: []string{"k2"}, AllowedTags: []string{"state"}},
		}

		keys := env.RequiredKeys(1, 7)
		assert.Equal(t, []string{"k1", "k2"}, keys.Sorted())
		assert.Equal(t, []string{"k1"}, env.RequiredKeys(1, 8).Sorted())

		assert.True(t, env.AllowsTag(1, 7, "state=public"))
		assert.True(t, env.AllowsTag(1, 8, "name=x"))
		assert.False(t, env.AllowsTag(1, 8, "state=public"))
		assert.True(t, env.AllowsTag(2, 9, "state=public"))
		assert.True(t, env.HasClusterAccess(1))
		assert.False(t, env.HasClusterAccess(2))
	})

	t.Run("Success_MergeKeepsExisting", func(t *testing.T) {
		ref := ActionKeyRef{Action: ActionView, KeyHash: "h"}
		var reqs Requirements
		reqs = reqs.Merge(Requirements{ref: {ActionID: 1}})
		reqs = reqs.Merge(Requirements{ref: {ActionID: 2}})
		assert.Equal(t, int64(1), reqs[ref].ActionID)
	})
}

func TestPermissionCache(t *testing.T) {
	cache := NewPermissionCache()
	env := NewEnvelope(graphDomain.KindCluster, ScopeView)

	_, ok := cache.Get(graphDomain.KindCluster, ScopeView, "a")
	assert.False(t, ok)

	cache.Put(graphDomain.KindCluster, ScopeView, "a", env)
	got, ok := cache.Get(graphDomain.KindCluster, ScopeView, "a")
	assert.True(t, ok)
	assert.Same(t, env, got)

	_, ok = cache.Get(graphDomain.KindContent, ScopeView, "a")
	assert.False(t, ok)
	_, ok = cache.Get(graphDomain.KindCluster, ScopeUpdate, "a")
	assert.False(t, ok)
	assert.Equal(t, 1, cache.Len())
}
