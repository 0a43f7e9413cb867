package domain

import (
	"strings"

	apperrors "github.com/devkral/secretgraph/internal/errors"
)

// Size limits.
const (
	MaxTagLength   = 8000
	MaxExtraLength = 8000
)

// Reserved tag names.
const (
	TagID       = "id"
	TagState    = "state"
	TagType     = "type"
	TagKeyHash  = "key_hash"
	TagKey      = "key"
	TagTransfer = "transfer"
)

// Content states.
const (
	StateDraft    = "draft"
	StatePublic   = "public"
	StateInternal = "internal"
	StateDefault  = "default"
)

// Content types with special handling.
const (
	TypePublicKey  = "PublicKey"
	TypePrivateKey = "PrivateKey"
	TypeConfig     = "Config"
)

// Reserved reference groups.
const (
	GroupKey       = "key"
	GroupTransfer  = "transfer"
	GroupSignature = "signature"
	GroupPublicKey = "public_key"
)

// ActionGroupFetch marks ContentActions that expire their content once used.
const ActionGroupFetch = "fetch"

// MaxFlexIDAttempts bounds the retries on flexid collisions.
const MaxFlexIDAttempts = 1000

// IsKeyType reports whether contentType is PublicKey or PrivateKey.
func IsKeyType(contentType string) bool {
	return contentType == TypePublicKey || contentType == TypePrivateKey
}

// IsValidState reports whether state belongs to the state vocabulary.
func IsValidState(state string) bool {
	switch state {
	case StateDraft, StatePublic, StateInternal, StateDefault:
		return true
	}
	return false
}

// DeleteRecursive controls what deleting a reference target does to the source.
type DeleteRecursive string

// DeleteRecursive values.
const (
	// DeleteRecursiveTrue deletes the source together with the target.
	DeleteRecursiveTrue DeleteRecursive = "true"
	// DeleteRecursiveFalse only drops the reference.
	DeleteRecursiveFalse DeleteRecursive = "false"
	// DeleteRecursiveNoGroup deletes the source once its group has no other target.
	DeleteRecursiveNoGroup DeleteRecursive = "no_group"
)

// ParseDeleteRecursive parses a DeleteRecursive value.
func ParseDeleteRecursive(raw string) (DeleteRecursive, error) {
	switch DeleteRecursive(strings.ToLower(raw)) {
	case DeleteRecursiveTrue:
		return DeleteRecursiveTrue, nil
	case DeleteRecursiveFalse:
		return DeleteRecursiveFalse, nil
	case DeleteRecursiveNoGroup, "nogroup":
		return DeleteRecursiveNoGroup, nil
	}
	return "", apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid deleteRecursive %q", raw)
}

// MetadataOperation selects how new tags and references merge with old ones.
type MetadataOperation string

// Metadata operations.
const (
	OperationAppend  MetadataOperation = "append"
	OperationRemove  MetadataOperation = "remove"
	OperationReplace MetadataOperation = "replace"
)

// ParseMetadataOperation parses a MetadataOperation; empty means append.
func ParseMetadataOperation(raw string) (MetadataOperation, error) {
	switch MetadataOperation(strings.ToLower(raw)) {
	case "", OperationAppend:
		return OperationAppend, nil
	case OperationRemove:
		return OperationRemove, nil
	case OperationReplace:
		return OperationReplace, nil
	}
	return "", apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid operation %q", raw)
}

// EntityKind selects which entity an authorization resolves for.
type EntityKind string

// Entity kinds.
const (
	KindCluster EntityKind = "Cluster"
	KindContent EntityKind = "Content"
	KindAction  EntityKind = "Action"
)

// Valid reports whether k is a known entity kind.
func (k EntityKind) Valid() bool {
	switch k {
	case KindCluster, KindContent, KindAction:
		return true
	}
	return false
}

// TransferResult is the outcome of a value transfer. It is returned, never raised.
type TransferResult string

// Transfer outcomes.
const (
	TransferSuccess            TransferResult = "success"
	TransferNotFound           TransferResult = "notfound"
	TransferError              TransferResult = "error"
	TransferFailedVerification TransferResult = "failed_verification"
)
