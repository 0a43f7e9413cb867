package dto

import (
	"time"

	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

// ClusterResponse represents a cluster in API responses. Internal ids are never exposed.
type ClusterResponse struct {
	ID                 string     `json:"id"`
	GlobalID           string     `json:"globalId"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Public             bool       `json:"public"`
	PublicInfo         string     `json:"publicInfo,omitempty"`
	MarkForDestruction *time.Time `json:"markForDestruction,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// ReferenceResponse represents an outgoing reference of a content.
type ReferenceResponse struct {
	Target          string `json:"target"`
	Group           string `json:"group"`
	Extra           string `json:"extra,omitempty"`
	DeleteRecursive string `json:"deleteRecursive"`
}

// ContentResponse represents a content without its value.
type ContentResponse struct {
	ID                 string              `json:"id"`
	GlobalID           string              `json:"globalId"`
	Nonce              string              `json:"nonce"`
	ContentHash        *string             `json:"contentHash,omitempty"`
	Tags               []string            `json:"tags"`
	References         []ReferenceResponse `json:"references,omitempty"`
	MarkForDestruction *time.Time          `json:"markForDestruction,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// GetContentResponse is a content together with its encrypted value.
type GetContentResponse struct {
	ContentResponse
	Value []byte `json:"value"`
}

// KeyPairResponse is the result of a key creation.
type KeyPairResponse struct {
	Public  ContentResponse  `json:"public"`
	Private *ContentResponse `json:"private,omitempty"`
}

// ActionResponse describes a stored action; the payload stays encrypted.
type ActionResponse struct {
	KeyHash string     `json:"keyHash"`
	Type    string     `json:"type"`
	Group   string     `json:"group,omitempty"`
	Start   time.Time  `json:"start"`
	Stop    *time.Time `json:"stop,omitempty"`
}

// ListResponse is a page of items.
type ListResponse[T any] struct {
	Data []T `json:"data"`
}

// DeleteResponse reports how many contents a deletion removed, dependents included.
type DeleteResponse struct {
	Deleted int `json:"deleted"`
}

// TransferResponse reports the transfer outcome.
type TransferResponse struct {
	Result string `json:"result"`
}

// MapClusterToResponse converts a domain cluster to an API response.
func MapClusterToResponse(cluster *graphDomain.Cluster) ClusterResponse {
	flexID := cluster.FlexID.String()
	return ClusterResponse{
		ID:                 flexID,
		GlobalID:           graphDomain.EncodeGlobalID(string(graphDomain.KindCluster), flexID),
		Name:               cluster.Name,
		Description:        cluster.Description,
		Public:             cluster.Public,
		PublicInfo:         string(cluster.PublicInfo),
		MarkForDestruction: cluster.MarkForDestruction,
		CreatedAt:          cluster.CreatedAt,
		UpdatedAt:          cluster.UpdatedAt,
	}
}

// MapClustersToListResponse converts domain clusters to a list response.
func MapClustersToListResponse(clusters []*graphDomain.Cluster) ListResponse[ClusterResponse] {
	data := make([]ClusterResponse, 0, len(clusters))
	for _, cluster := range clusters {
		data = append(data, MapClusterToResponse(cluster))
	}
	return ListResponse[ClusterResponse]{Data: data}
}

// MapContentToResponse converts a domain content to an API response.
func MapContentToResponse(content *graphDomain.Content) ContentResponse {
	flexID := content.FlexID.String()
	tags := content.Tags
	if tags == nil {
		tags = []string{}
	}
	response := ContentResponse{
		ID:                 flexID,
		GlobalID:           graphDomain.EncodeGlobalID(string(graphDomain.KindContent), flexID),
		Nonce:              content.Nonce,
		ContentHash:        content.ContentHash,
		Tags:               tags,
		MarkForDestruction: content.MarkForDestruction,
		CreatedAt:          content.CreatedAt,
		UpdatedAt:          content.UpdatedAt,
	}
	for _, ref := range content.References {
		response.References = append(response.References, ReferenceResponse{
			Target:          ref.TargetFlexID.String(),
			Group:           ref.Group,
			Extra:           ref.Extra,
			DeleteRecursive: string(ref.DeleteRecursive),
		})
	}
	return response
}

// MapContentsToListResponse converts domain contents to a list response.
func MapContentsToListResponse(contents []*graphDomain.Content) ListResponse[ContentResponse] {
	data := make([]ContentResponse, 0, len(contents))
	for _, content := range contents {
		data = append(data, MapContentToResponse(content))
	}
	return ListResponse[ContentResponse]{Data: data}
}

// MapKeyPairToResponse converts created keys to an API response.
func MapKeyPairToResponse(public, private *graphDomain.Content) KeyPairResponse {
	response := KeyPairResponse{Public: MapContentToResponse(public)}
	if private != nil {
		mapped := MapContentToResponse(private)
		response.Private = &mapped
	}
	return response
}

// MapActionsToListResponse converts domain actions to a list response.
func MapActionsToListResponse(actions []*graphDomain.Action) ListResponse[ActionResponse] {
	data := make([]ActionResponse, 0, len(actions))
	for _, action := range actions {
		item := ActionResponse{
			KeyHash: action.KeyHash,
			Type:    action.ActionType,
			Start:   action.Start,
			Stop:    action.Stop,
		}
		if action.ContentAction != nil {
			item.Group = action.ContentAction.Group
		}
		data = append(data, item)
	}
	return ListResponse[ActionResponse]{Data: data}
}
