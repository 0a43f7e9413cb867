// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	validation "github.com/jellydator/validation"

	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	graphUsecase "github.com/devkral/secretgraph/internal/graph/usecase"
	customValidation "github.com/devkral/secretgraph/internal/validation"
)

var httpURL = regexp.MustCompile(`^https?://[^\s]+$`)

// ActionRequest describes one action. Value is the JSON payload; Key is the
// base64 action key and defaults to the first request token.
type ActionRequest struct {
	Key   []byte          `json:"key,omitempty"`
	Value json.RawMessage `json:"value"`
	Start *time.Time      `json:"start,omitempty"`
	Stop  *time.Time      `json:"stop,omitempty"`
}

// Validate checks if the action request is valid.
func (r ActionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Key, validation.Length(32, 32)),
		validation.Field(&r.Value, validation.Required),
	)
}

// ReferenceRequest names a reference target by flexid, global id or content hash.
type ReferenceRequest struct {
	Target          string  `json:"target"`
	Group           string  `json:"group"`
	Extra           string  `json:"extra,omitempty"`
	DeleteRecursive *string `json:"deleteRecursive,omitempty"`
}

// Validate checks if the reference request is valid.
func (r ReferenceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Target, validation.Required, customValidation.NotBlank),
		validation.Field(&r.Group, customValidation.NoWhitespace),
		validation.Field(&r.Extra, customValidation.Extra),
		validation.Field(&r.DeleteRecursive, validation.By(func(value any) error {
			if r.DeleteRecursive == nil {
				return nil
			}
			if _, err := graphDomain.ParseDeleteRecursive(*r.DeleteRecursive); err != nil {
				return validation.NewError("validation_delete_recursive", "must be true, false or no_group")
			}
			return nil
		})),
	)
}

// maxPublicInfoLength bounds the public info document of a cluster.
const maxPublicInfoLength = 1 << 20

// CreateClusterRequest contains the parameters for creating a cluster.
// PublicInfo is the document published with the cluster, usually turtle.
type CreateClusterRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Public      bool            `json:"public"`
	PublicInfo  string          `json:"publicInfo"`
	Actions     []ActionRequest `json:"actions"`
}

// Validate checks if the create cluster request is valid.
func (r *CreateClusterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PublicInfo, validation.Length(0, maxPublicInfoLength)),
		validation.Field(&r.Actions, validation.Required),
	)
}

// CreateActionsRequest contains the actions added to a cluster.
type CreateActionsRequest struct {
	Actions []ActionRequest `json:"actions"`
}

// Validate checks if the create actions request is valid.
func (r *CreateActionsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Actions, validation.Required),
	)
}

// CreateContentRequest contains the parameters for creating a content.
// Value is the base64 encoded ciphertext.
type CreateContentRequest struct {
	Cluster     string             `json:"cluster"`
	Tags        []string           `json:"tags"`
	References  []ReferenceRequest `json:"references"`
	Value       []byte             `json:"value"`
	Nonce       string             `json:"nonce"`
	ContentHash string             `json:"contentHash,omitempty"`
	Actions     []ActionRequest    `json:"actions"`
}

// Validate checks if the create content request is valid.
func (r *CreateContentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Cluster, validation.Required, customValidation.FlexID(graphDomain.KindCluster)),
		validation.Field(&r.Tags, validation.Each(customValidation.Tag)),
		validation.Field(&r.References),
		validation.Field(&r.Value, validation.Required),
		validation.Field(&r.Nonce, validation.Required, customValidation.Nonce),
		validation.Field(&r.Actions),
	)
}

// CreateKeyRequest contains a DER public key and an optional encrypted private key.
type CreateKeyRequest struct {
	Cluster      string             `json:"cluster"`
	PublicKey    []byte             `json:"publicKey"`
	PublicTags   []string           `json:"publicTags"`
	References   []ReferenceRequest `json:"references"`
	PrivateKey   []byte             `json:"privateKey,omitempty"`
	PrivateTags  []string           `json:"privateTags"`
	PrivateNonce string             `json:"nonce,omitempty"`
	Actions      []ActionRequest    `json:"actions"`
}

// Validate checks if the create key request is valid.
func (r *CreateKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Cluster, validation.Required, customValidation.FlexID(graphDomain.KindCluster)),
		validation.Field(&r.PublicKey, validation.Required),
		validation.Field(&r.PublicTags, validation.Each(customValidation.Tag)),
		validation.Field(&r.References),
		validation.Field(&r.PrivateTags, validation.Each(customValidation.Tag)),
		validation.Field(&r.PrivateNonce, customValidation.Nonce),
		validation.Field(&r.Actions),
	)
}

// UpdateContentRequest replaces value, tags and references of a content. A
// null tags or references field keeps the stored ones and a missing value
// keeps the stored value. Keys resend their DER public key.
type UpdateContentRequest struct {
	Tags        []string           `json:"tags"`
	References  []ReferenceRequest `json:"references"`
	Value       []byte             `json:"value,omitempty"`
	Nonce       string             `json:"nonce,omitempty"`
	ContentHash string             `json:"contentHash,omitempty"`
	PublicKey   []byte             `json:"publicKey,omitempty"`
	Actions     []ActionRequest    `json:"actions"`
}

// Validate checks if the update content request is valid.
func (r *UpdateContentRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Tags, validation.Each(customValidation.Tag)),
		validation.Field(&r.References),
		validation.Field(&r.Nonce, customValidation.Nonce),
		validation.Field(&r.Actions),
	)
}

// UpdateMetadataRequest changes tags and references. A null tags or
// references field leaves that part untouched.
type UpdateMetadataRequest struct {
	Tags       []string           `json:"tags"`
	References []ReferenceRequest `json:"references"`
	Operation  string             `json:"operation"`
}

// Validate checks if the update metadata request is valid.
func (r *UpdateMetadataRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Tags, validation.Each(customValidation.Tag)),
		validation.Field(&r.References),
		validation.Field(&r.Operation, validation.In("append", "remove", "replace")),
	)
}

// ScheduleDeletionRequest sets the destruction deadline; a null "at" clears it.
type ScheduleDeletionRequest struct {
	At *time.Time `json:"at"`
}

// TransferRequest pulls a value either through an encrypted transfer
// descriptor (Key) or from URL with optional Headers. Timeout in seconds
// shortens the server's transfer timeout.
type TransferRequest struct {
	Key     []byte            `json:"key,omitempty"`
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Timeout int               `json:"timeout,omitempty"`
}

// Validate checks if the transfer request is valid.
func (r *TransferRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Key, validation.By(func(any) error {
			switch {
			case len(r.Key) == 0 && r.URL == "":
				return validation.NewError("validation_transfer_source", "key or url required")
			case len(r.Key) > 0 && r.URL != "":
				return validation.NewError("validation_transfer_source", "can only specify key or url")
			}
			return nil
		}), validation.Length(32, 32)),
		validation.Field(&r.URL, validation.Match(httpURL)),
		validation.Field(&r.Timeout, validation.Min(0)),
	)
}

// ToActionInputs maps action requests to usecase inputs.
func ToActionInputs(actions []ActionRequest) []graphUsecase.ActionInput {
	inputs := make([]graphUsecase.ActionInput, 0, len(actions))
	for _, a := range actions {
		inputs = append(inputs, graphUsecase.ActionInput{
			Key:     a.Key,
			Payload: a.Value,
			Start:   a.Start,
			Stop:    a.Stop,
		})
	}
	return inputs
}

// ToReferenceInputs maps reference requests to usecase inputs. A nil slice
// stays nil.
func ToReferenceInputs(refs []ReferenceRequest) ([]graphUsecase.ReferenceInput, error) {
	if refs == nil {
		return nil, nil
	}
	inputs := make([]graphUsecase.ReferenceInput, 0, len(refs))
	for _, ref := range refs {
		input := graphUsecase.ReferenceInput{Target: ref.Target, Group: ref.Group, Extra: ref.Extra}
		if ref.DeleteRecursive != nil {
			deleteRecursive, err := graphDomain.ParseDeleteRecursive(*ref.DeleteRecursive)
			if err != nil {
				return nil, err
			}
			input.DeleteRecursive = &deleteRecursive
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}

// ToCreateContentInput maps the request to the usecase input.
func (r *CreateContentRequest) ToCreateContentInput() (graphUsecase.CreateContentInput, error) {
	refs, err := ToReferenceInputs(r.References)
	if err != nil {
		return graphUsecase.CreateContentInput{}, err
	}
	return graphUsecase.CreateContentInput{
		Cluster:     r.Cluster,
		Tags:        r.Tags,
		References:  refs,
		Value:       r.Value,
		Nonce:       r.Nonce,
		ContentHash: r.ContentHash,
		Actions:     ToActionInputs(r.Actions),
	}, nil
}

// ToCreateKeyInput maps the request to the usecase input.
func (r *CreateKeyRequest) ToCreateKeyInput() (graphUsecase.CreateKeyInput, error) {
	refs, err := ToReferenceInputs(r.References)
	if err != nil {
		return graphUsecase.CreateKeyInput{}, err
	}
	return graphUsecase.CreateKeyInput{
		Cluster:      r.Cluster,
		PublicKey:    r.PublicKey,
		PublicTags:   r.PublicTags,
		References:   refs,
		PrivateKey:   r.PrivateKey,
		PrivateTags:  r.PrivateTags,
		PrivateNonce: r.PrivateNonce,
		Actions:      ToActionInputs(r.Actions),
	}, nil
}

// ToUpdateContentInput maps the request to the usecase input for content.
func (r *UpdateContentRequest) ToUpdateContentInput(content string) (graphUsecase.UpdateContentInput, error) {
	refs, err := ToReferenceInputs(r.References)
	if err != nil {
		return graphUsecase.UpdateContentInput{}, err
	}
	return graphUsecase.UpdateContentInput{
		Content:     content,
		Tags:        r.Tags,
		References:  refs,
		Value:       r.Value,
		Nonce:       r.Nonce,
		ContentHash: r.ContentHash,
		PublicKey:   r.PublicKey,
		Actions:     ToActionInputs(r.Actions),
	}, nil
}

// ToUpdateMetadataInput maps the request to the usecase input for content.
func (r *UpdateMetadataRequest) ToUpdateMetadataInput(content string) (graphUsecase.UpdateMetadataInput, error) {
	operation, err := graphDomain.ParseMetadataOperation(r.Operation)
	if err != nil {
		return graphUsecase.UpdateMetadataInput{}, err
	}
	refs, err := ToReferenceInputs(r.References)
	if err != nil {
		return graphUsecase.UpdateMetadataInput{}, err
	}
	return graphUsecase.UpdateMetadataInput{
		Content:    content,
		Tags:       r.Tags,
		References: refs,
		Operation:  operation,
	}, nil
}

// ToTransferContentInput maps the request to the usecase input for content.
func (r *TransferRequest) ToTransferContentInput(content string) graphUsecase.TransferContentInput {
	var header http.Header
	if len(r.Headers) > 0 {
		header = make(http.Header, len(r.Headers))
		for name, value := range r.Headers {
			header.Set(name, value)
		}
	}
	return graphUsecase.TransferContentInput{
		Content: content,
		Key:     r.Key,
		URL:     r.URL,
		Headers: header,
		Timeout: time.Duration(r.Timeout) * time.Second,
	}
}
