package domain

import (
	"github.com/google/uuid"

	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
	metadataDomain "github.com/devkral/secretgraph/internal/metadata/domain"
	"github.com/devkral/secretgraph/internal/predicate"
)

// ResolvedAction is an action that contributed to the envelope.
type ResolvedAction struct {
	Action   *graphDomain.Action
	Payload  *Payload
	Decision Decision
}

// ClusterGrant is the outcome of evaluating every action of one cluster.
type ClusterGrant struct {
	ID          int64
	FlexID      uuid.UUID
	AccessLevel int
	Filter      predicate.Predicate
}

// ActionKeyRef identifies a requirement by action kind and key hash.
type ActionKeyRef struct {
	Action  string
	KeyHash string
}

// KeyRequirement is the form of a winning or tied action.
type KeyRequirement struct {
	ActionID     int64
	RequiredKeys []string
	AllowedTags  []string
}

// Requirements maps the granting actions of one cluster or content to their forms.
type Requirements map[ActionKeyRef]KeyRequirement

// Envelope is the result of resolving an authset for one entity kind and scope.
//
// Objects selects the visible rows of the kind's table. An envelope that denies
// has Objects set to false, every map empty and RejectingAction set.
type Envelope struct {
	Kind                 graphDomain.EntityKind
	Scope                string
	Objects              predicate.Predicate
	Actions              []*ResolvedAction
	Clusters             map[uuid.UUID]*ClusterGrant
	RequiredKeysClusters map[int64]Requirements
	RequiredKeysContents map[int64]Requirements
	Forms                map[int64]*Form
	ActionKeyMap         map[string][]byte
	RejectingAction      *graphDomain.Action
}

// NewEnvelope returns an envelope granting nothing.
func NewEnvelope(kind graphDomain.EntityKind, scope string) *Envelope {
	return &Envelope{
		Kind:                 kind,
		Scope:                scope,
		Objects:              predicate.False(),
		Clusters:             make(map[uuid.UUID]*ClusterGrant),
		RequiredKeysClusters: make(map[int64]Requirements),
		RequiredKeysContents: make(map[int64]Requirements),
		Forms:                make(map[int64]*Form),
		ActionKeyMap:         make(map[string][]byte),
	}
}

// Narrow returns a shallow copy whose Objects is additionally restricted by p.
func (e *Envelope) Narrow(p predicate.Predicate) *Envelope {
	narrowed := *e
	narrowed.Objects = predicate.AllOf(e.Objects, p)
	return &narrowed
}

// Denied reports whether an action rejected the resolution.
func (e *Envelope) Denied() bool {
	return e.RejectingAction != nil
}

// ClusterIDs returns the internal ids of every cluster that granted access.
func (e *Envelope) ClusterIDs() []int64 {
	ids := make([]int64, 0, len(e.Clusters))
	for _, grant := range e.Clusters {
		ids = append(ids, grant.ID)
	}
	return ids
}

// Grant returns the grant for the cluster with the internal id.
func (e *Envelope) Grant(clusterID int64) *ClusterGrant {
	for _, grant := range e.Clusters {
		if grant.ID == clusterID {
			return grant
		}
	}
	return nil
}

// HasClusterAccess reports whether a cluster-wide action granted access to clusterID.
func (e *Envelope) HasClusterAccess(clusterID int64) bool {
	_, ok := e.RequiredKeysClusters[clusterID]
	return ok
}

// RequiredKeys collects the keys every mutation of contentID in clusterID must
// be encrypted for and signed by.
func (e *Envelope) RequiredKeys(clusterID, contentID int64) metadataDomain.HashSet {
	keys := make(metadataDomain.HashSet)
	for _, reqs := range []Requirements{e.RequiredKeysClusters[clusterID], e.RequiredKeysContents[contentID]} {
		for _, req := range reqs {
			for _, k := range req.RequiredKeys {
				keys[k] = struct{}{}
			}
		}
	}
	return keys
}

// AllowsTag reports whether some granting action for the cluster or content
// permits tag. Without any recorded requirement every tag is allowed.
func (e *Envelope) AllowsTag(clusterID, contentID int64, tag string) bool {
	var reqs []KeyRequirement
	for _, r := range e.RequiredKeysClusters[clusterID] {
		reqs = append(reqs, r)
	}
	for _, r := range e.RequiredKeysContents[contentID] {
		reqs = append(reqs, r)
	}
	if len(reqs) == 0 {
		return true
	}
	for _, r := range reqs {
		form := Form{RequiredKeys: r.RequiredKeys, AllowedTags: r.AllowedTags}
		if form.AllowsTag(tag) {
			return true
		}
	}
	return false
}

// ActionIDs returns the ids of the contributing actions.
func (e *Envelope) ActionIDs() []int64 {
	ids := make([]int64, 0, len(e.Actions))
	for _, a := range e.Actions {
		ids = append(ids, a.Action.ID)
	}
	return ids
}

// Merge adds the requirements of other to r, keeping existing entries.
func (r Requirements) Merge(other Requirements) Requirements {
	if r == nil {
		r = make(Requirements, len(other))
	}
	for k, v := range other {
		if _, ok := r[k]; !ok {
			r[k] = v
		}
	}
	return r
}
