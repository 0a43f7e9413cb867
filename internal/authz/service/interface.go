// Package service evaluates decrypted action payloads. Every action kind maps to
// a Handler in a Registry; unknown kinds are not applicable.
package service

import (
	"context"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

// Handler evaluates one action kind.
type Handler interface {
	// Evaluate decides what action grants for kind under scope. accessLevel is
	// the highest level granted so far for the cluster.
	Evaluate(
		ctx context.Context,
		kind graphDomain.EntityKind,
		payload *authzDomain.Payload,
		scope string,
		action *graphDomain.Action,
		accessLevel int,
	) (authzDomain.Decision, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(
	ctx context.Context,
	kind graphDomain.EntityKind,
	payload *authzDomain.Payload,
	scope string,
	action *graphDomain.Action,
	accessLevel int,
) (authzDomain.Decision, error)

// Evaluate calls f.
func (f HandlerFunc) Evaluate(
	ctx context.Context,
	kind graphDomain.EntityKind,
	payload *authzDomain.Payload,
	scope string,
	action *graphDomain.Action,
	accessLevel int,
) (authzDomain.Decision, error) {
	return f(ctx, kind, payload, scope, action, accessLevel)
}
