// Package usecase implements the mutations of the secretgraph: clusters,
// contents, keys and the actions that grant access to them.
//
// Every mutation authorizes through the ActionResolver first, validates its
// input completely and only then persists inside one transaction.
package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

// ClusterRepository defines the cluster persistence operations.
type ClusterRepository interface {
	// Create inserts cluster with its FlexID; a taken FlexID yields ErrConflict
	// without aborting the surrounding transaction.
	Create(ctx context.Context, cluster *graphDomain.Cluster) error
	Get(ctx context.Context, p predicate.Predicate) (*graphDomain.Cluster, error)
	List(ctx context.Context, p predicate.Predicate, offset, limit int) ([]*graphDomain.Cluster, error)
	SetMarkForDestruction(ctx context.Context, id int64, at *time.Time) error
	// SetFlexID assigns a flexid to a row lacking one; a taken flexid yields ErrConflict.
	SetFlexID(ctx context.Context, id int64, flexID uuid.UUID) error
	ListMissingFlexID(ctx context.Context, limit int) ([]int64, error)
}

// ContentRepository defines the content persistence operations.
type ContentRepository interface {
	// Create inserts content with its FlexID; a taken FlexID yields ErrConflict
	// without aborting the surrounding transaction.
	Create(ctx context.Context, content *graphDomain.Content) error
	// Update stores nonce, value ref, content hash and updated_at of content.
	Update(ctx context.Context, content *graphDomain.Content) error
	// First returns the first content matching p with its tags loaded.
	First(ctx context.Context, p predicate.Predicate) (*graphDomain.Content, error)
	List(ctx context.Context, p predicate.Predicate, offset, limit int) ([]*graphDomain.Content, error)
	ReplaceTags(ctx context.Context, id int64, tags []string) error
	ReplaceReferences(ctx context.Context, id int64, refs []*graphDomain.ContentReference) error
	// ListReferences returns the references of sourceID with their target loaded.
	ListReferences(ctx context.Context, sourceID int64) ([]*graphDomain.ContentReference, error)
	SetMarkForDestruction(ctx context.Context, ids []int64, at *time.Time) (int64, error)
	SetFlexID(ctx context.Context, id int64, flexID uuid.UUID) error
	ListMissingFlexID(ctx context.Context, limit int) ([]int64, error)
}

// ActionRepository persists actions.
type ActionRepository interface {
	// Create inserts action and, when set, its ContentAction.
	Create(ctx context.Context, action *graphDomain.Action) error
}

// ValueStore holds the encrypted content values.
type ValueStore interface {
	Write(ctx context.Context, ref string, value []byte) error
	Read(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}

// Access carries the credentials of a request together with its permission cache.
type Access struct {
	Cache   *authzDomain.PermissionCache
	Authset []authzDomain.Token
}

// DefaultKey returns the key of the first token, the fallback action key.
func (a Access) DefaultKey() []byte {
	if len(a.Authset) == 0 {
		return nil
	}
	return a.Authset[0].Key
}

// ReferenceInput names a reference target and how the reference behaves.
type ReferenceInput struct {
	Target          string
	Group           string
	Extra           string
	DeleteRecursive *graphDomain.DeleteRecursive
}

// ActionInput describes an action to create.
//
// Payload is the JSON object encrypted under Key; its "action" field selects
// the handler and an optional "contentActionGroup" field is moved onto the
// ContentAction. An empty Key falls back to the first credential of the request.
type ActionInput struct {
	Key     []byte
	Payload json.RawMessage
	Start   *time.Time
	Stop    *time.Time
}

// CreateClusterInput is the input of ClusterUseCase.Create.
type CreateClusterInput struct {
	Name        string
	Description string
	Public      bool
	PublicInfo  []byte
	Actions     []ActionInput
}

// CreateContentInput is the input of ContentUseCase.Create.
type CreateContentInput struct {
	// Cluster is a flexid or a Cluster global id.
	Cluster     string
	Tags        []string
	References  []ReferenceInput
	Value       []byte
	Nonce       string
	ContentHash string
	Actions     []ActionInput
}

// CreateKeyInput is the input of ContentUseCase.CreateKey.
type CreateKeyInput struct {
	Cluster    string
	PublicKey  []byte
	PublicTags []string
	References []ReferenceInput
	// PrivateKey is the encrypted private key; empty creates only the public key.
	PrivateKey   []byte
	PrivateTags  []string
	PrivateNonce string
	Actions      []ActionInput
}

// UpdateContentInput is the input of ContentUseCase.Update. A nil Tags or
// References keeps the stored ones; a nil Value keeps the stored value.
// Keys must resend their PublicKey, which has to match the stored one.
type UpdateContentInput struct {
	Content     string
	Tags        []string
	References  []ReferenceInput
	Value       []byte
	Nonce       string
	ContentHash string
	PublicKey   []byte
	Actions     []ActionInput
}

// UpdateMetadataInput is the input of ContentUseCase.UpdateMetadata.
// A nil Tags or References leaves that part untouched.
type UpdateMetadataInput struct {
	Content    string
	Tags       []string
	References []ReferenceInput
	Operation  graphDomain.MetadataOperation
}

// TransferContentInput is the input of ContentUseCase.Transfer. Either Key
// decrypts the stored transfer descriptor or URL names the source.
// A positive Timeout shortens the configured fetch timeout.
type TransferContentInput struct {
	Content string
	Key     []byte
	URL     string
	Headers http.Header
	Timeout time.Duration
}

// KeyPair is the result of ContentUseCase.CreateKey. Private is nil when no
// private key was supplied.
type KeyPair struct {
	Public  *graphDomain.Content
	Private *graphDomain.Content
}

// ClusterUseCase defines the cluster operations.
type ClusterUseCase interface {
	// Create stores a new cluster with its initial actions.
	Create(ctx context.Context, access Access, input CreateClusterInput) (*graphDomain.Cluster, error)
	// List returns the clusters visible to access.
	List(ctx context.Context, access Access, offset, limit int) ([]*graphDomain.Cluster, error)
	// ScheduleDeletion sets or clears the destruction deadline of a cluster
	// the request may delete.
	ScheduleDeletion(ctx context.Context, access Access, cluster string, at *time.Time) error
	// FillFlexIDs assigns flexids to clusters and contents lacking one.
	FillFlexIDs(ctx context.Context) (int, error)
}

// ContentUseCase defines the content operations.
type ContentUseCase interface {
	Create(ctx context.Context, access Access, input CreateContentInput) (*graphDomain.Content, error)
	CreateKey(ctx context.Context, access Access, input CreateKeyInput) (*KeyPair, error)
	// Update replaces value, tags and references of a content or key.
	Update(ctx context.Context, access Access, input UpdateContentInput) (*graphDomain.Content, error)
	UpdateMetadata(ctx context.Context, access Access, input UpdateMetadataInput) (*graphDomain.Content, error)
	// List returns the contents visible to access, marking fetch actions used.
	List(ctx context.Context, access Access, offset, limit int) ([]*graphDomain.Content, error)
	// Get returns a content with its value, marking fetch actions used.
	Get(ctx context.Context, access Access, content string) (*graphDomain.Content, []byte, error)
	// Delete removes a content and its dependents; it returns the deleted ids.
	Delete(ctx context.Context, access Access, content string) ([]int64, error)
	// ScheduleDeletion sets or clears the destruction deadline of a content.
	ScheduleDeletion(ctx context.Context, access Access, content string, at *time.Time) error
	// Transfer replaces the value of a content with a remote one.
	Transfer(ctx context.Context, access Access, input TransferContentInput) (graphDomain.TransferResult, error)
}

// ActionUseCase defines the action operations.
type ActionUseCase interface {
	// Create adds actions to a cluster the request may manage.
	Create(ctx context.Context, access Access, cluster string, inputs []ActionInput) ([]*graphDomain.Action, error)
}
