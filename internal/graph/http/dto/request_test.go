package dto

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

const nonce = "MDEyMzQ1Njc4OWFiYw==" // "0123456789abc"

func TestCreateContentRequest_Validate(t *testing.T) {
	valid := func() CreateContentRequest {
		return CreateContentRequest{
			Cluster: uuid.NewString(),
			Tags:    []string{"type=File"},
			Value:   []byte("ciphertext"),
			Nonce:   nonce,
		}
	}

	t.Run("Success_ValidRequest", func(t *testing.T) {
		req := valid()
		assert.NoError(t, req.Validate())
	})

	t.Run("Success_GlobalClusterID", func(t *testing.T) {
		req := valid()
		req.Cluster = graphDomain.EncodeGlobalID("Cluster", uuid.NewString())
		assert.NoError(t, req.Validate())
	})

	t.Run("Error_ContentGlobalIDAsCluster", func(t *testing.T) {
		req := valid()
		req.Cluster = graphDomain.EncodeGlobalID("Content", uuid.NewString())
		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cluster")
	})

	t.Run("Error_TagTooLong", func(t *testing.T) {
		req := valid()
		req.Tags = []string{"name=" + strings.Repeat("a", graphDomain.MaxTagLength)}
		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tags")
	})

	t.Run("Error_BlankReferenceTarget", func(t *testing.T) {
		req := valid()
		req.References = []ReferenceRequest{{Target: "  ", Group: "key"}}
		assert.Error(t, req.Validate())
	})

	t.Run("Error_MissingValue", func(t *testing.T) {
		req := valid()
		req.Value = nil
		assert.Error(t, req.Validate())
	})
}

func TestTransferRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     TransferRequest
		wantErr bool
	}{
		{name: "key", req: TransferRequest{Key: make([]byte, 32)}},
		{name: "url", req: TransferRequest{URL: "http://example.com/v"}},
		{name: "neither", req: TransferRequest{}, wantErr: true},
		{name: "both", req: TransferRequest{Key: make([]byte, 32), URL: "http://example.com/v"}, wantErr: true},
		{name: "short key", req: TransferRequest{Key: make([]byte, 16)}, wantErr: true},
		{name: "not http", req: TransferRequest{URL: "ftp://example.com/v"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToReferenceInputs(t *testing.T) {
	t.Run("NilStaysNil", func(t *testing.T) {
		refs, err := ToReferenceInputs(nil)
		require.NoError(t, err)
		assert.Nil(t, refs)
	})

	t.Run("DefaultsLeftToUsecase", func(t *testing.T) {
		refs, err := ToReferenceInputs([]ReferenceRequest{{Target: "t", Group: "key"}})
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Nil(t, refs[0].DeleteRecursive)
	})

	t.Run("ParsesPolicy", func(t *testing.T) {
		policy := "FALSE"
		refs, err := ToReferenceInputs([]ReferenceRequest{{Target: "t", DeleteRecursive: &policy}})
		require.NoError(t, err)
		assert.Equal(t, graphDomain.DeleteRecursiveFalse, *refs[0].DeleteRecursive)
	})
}

func TestUpdateMetadataRequest_NullFields(t *testing.T) {
	var req UpdateMetadataRequest
	require.NoError(t, json.Unmarshal([]byte(`{"tags":[],"operation":"remove"}`), &req))
	require.NoError(t, req.Validate())

	input, err := req.ToUpdateMetadataInput("abc")
	require.NoError(t, err)
	assert.NotNil(t, input.Tags)
	assert.Nil(t, input.References)
	assert.Equal(t, graphDomain.OperationRemove, input.Operation)
}
