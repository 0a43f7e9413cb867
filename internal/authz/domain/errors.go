package domain

import (
	apperrors "github.com/devkral/secretgraph/internal/errors"
)

// Authorization errors.
var (
	// ErrInvalidEntityKind is a programming error: the resolver only knows clusters, contents and actions.
	ErrInvalidEntityKind = apperrors.New("invalid entity kind")

	// ErrInvalidPayload indicates an action payload that is not a JSON object.
	ErrInvalidPayload = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid action payload")

	// ErrMissingActionKind indicates a payload without an "action" discriminator.
	ErrMissingActionKind = apperrors.Wrap(apperrors.ErrInvalidInput, "action payload has no action field")

	// ErrInvalidToken indicates a malformed cluster:key token.
	ErrInvalidToken = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid token")
)
