package domain

import (
	"sync"

	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

type cacheKey struct {
	kind    graphDomain.EntityKind
	scope   string
	authset string
}

// PermissionCache memoizes envelopes for the lifetime of one request. It is
// created by the HTTP layer and passed explicitly to every resolution.
type PermissionCache struct {
	mu      sync.Mutex
	entries map[cacheKey]*Envelope
}

// NewPermissionCache creates an empty cache.
func NewPermissionCache() *PermissionCache {
	return &PermissionCache{entries: make(map[cacheKey]*Envelope)}
}

// Get returns the cached envelope.
func (c *PermissionCache) Get(kind graphDomain.EntityKind, scope, authset string) (*Envelope, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	env, ok := c.entries[cacheKey{kind: kind, scope: scope, authset: authset}]
	return env, ok
}

// Put stores env.
func (c *PermissionCache) Put(kind graphDomain.EntityKind, scope, authset string, env *Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{kind: kind, scope: scope, authset: authset}] = env
}

// Len returns the number of cached envelopes.
func (c *PermissionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
