package domain

import (
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

// ReferenceInput describes a reference to validate or create.
//
// Either Existing is set (a stored reference carried forward) or Target names the
// referenced content as a numeric id, a flexid, a Content global id or a digest.
type ReferenceInput struct {
	Existing        *graphDomain.ContentReference
	Target          string
	Group           string
	Extra           string
	DeleteRecursive *graphDomain.DeleteRecursive
}

// ReferenceResult is the outcome of a reference transformation.
type ReferenceResult struct {
	// References is nil when only validation was requested.
	References []*graphDomain.ContentReference
	// EncryptionHashes are the hashes of key-group targets.
	EncryptionHashes HashSet
	// SignatureHashes are the hashes of signature-group targets.
	SignatureHashes HashSet
}
