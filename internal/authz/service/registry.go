package service

import (
	"context"
	"sync"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

// Registry dispatches payloads to the handler registered for their kind.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates a Registry with the built-in view, update, delete and
// manage handlers.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	r.Register(authzDomain.ActionView, HandlerFunc(evaluateView))
	r.Register(authzDomain.ActionUpdate, HandlerFunc(evaluateUpdate))
	r.Register(authzDomain.ActionDelete, HandlerFunc(evaluateDelete))
	r.Register(authzDomain.ActionManage, HandlerFunc(evaluateManage))
	return r
}

// Register installs h for kind, replacing any previous handler.
func (r *Registry) Register(kind string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = h
}

// Has reports whether a handler exists for kind.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[kind]
	return ok
}

// Evaluate implements Handler by dispatching on payload.Kind.
func (r *Registry) Evaluate(
	ctx context.Context,
	kind graphDomain.EntityKind,
	payload *authzDomain.Payload,
	scope string,
	action *graphDomain.Action,
	accessLevel int,
) (authzDomain.Decision, error) {
	r.mu.RLock()
	h, ok := r.handlers[payload.Kind]
	r.mu.RUnlock()
	if !ok {
		return authzDomain.NotApplicable(), nil
	}
	return h.Evaluate(ctx, kind, payload, scope, action, accessLevel)
}
