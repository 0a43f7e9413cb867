// Package usecase pulls content values from remote locations into the value
// store, replacing a placeholder content in place.
package usecase

import (
	"context"
	"net/http"
	"time"

	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

// ContentRepository is the content persistence needed by transfers.
type ContentRepository interface {
	// LockForTransfer selects the row of id FOR UPDATE. With requireTag only a
	// content carrying the transfer tag matches. A missing row is ErrNotFound.
	LockForTransfer(ctx context.Context, id int64, requireTag bool) (*graphDomain.Content, error)
	// UpdateNonce stores the nonce of the transferred value.
	UpdateNonce(ctx context.Context, id int64, nonce string) error
	// DeleteReferencesInGroup removes the references of sourceID in group.
	DeleteReferencesInGroup(ctx context.Context, sourceID int64, group string) error
}

// ValueStore holds the encrypted content values.
type ValueStore interface {
	Read(ctx context.Context, ref string) ([]byte, error)
	Write(ctx context.Context, ref string, value []byte) error
}

// TransferRequest describes where a content value comes from.
//
// Either Key decrypts the stored value into a "url\r\nheaders" descriptor, or
// URL names the source directly. Headers are added to the request. Transfer
// requires the transfer tag and removes the transfer references on success.
type TransferRequest struct {
	ContentID int64
	Key       []byte
	URL       string
	Headers   http.Header
	Transfer  bool
	// Timeout shortens the configured fetch timeout; zero keeps it.
	Timeout time.Duration
}

// TransferUseCase fetches remote values.
type TransferUseCase interface {
	// Transfer reports the outcome as a TransferResult; the error is reserved
	// for failures of the local store.
	Transfer(ctx context.Context, req TransferRequest) (graphDomain.TransferResult, error)
}
