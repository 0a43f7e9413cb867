// Package http extracts request credentials for the authorization layer.
package http

import (
	"context"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
)

// authsetKey is a context key type for storing the parsed request tokens.
type authsetKey struct{}

// cacheKey is a context key type for storing the per-request permission cache.
type cacheKey struct{}

// WithAuthset stores the parsed credential tokens in the context.
func WithAuthset(ctx context.Context, tokens []authzDomain.Token) context.Context {
	return context.WithValue(ctx, authsetKey{}, tokens)
}

// GetAuthset retrieves the credential tokens. An empty authset is valid and
// yields only what public clusters expose.
func GetAuthset(ctx context.Context) ([]authzDomain.Token, bool) {
	tokens, ok := ctx.Value(authsetKey{}).([]authzDomain.Token)
	return tokens, ok
}

// WithPermissionCache stores the permission cache of the request in the context.
func WithPermissionCache(ctx context.Context, cache *authzDomain.PermissionCache) context.Context {
	return context.WithValue(ctx, cacheKey{}, cache)
}

// GetPermissionCache retrieves the permission cache of the request.
func GetPermissionCache(ctx context.Context) (*authzDomain.PermissionCache, bool) {
	cache, ok := ctx.Value(cacheKey{}).(*authzDomain.PermissionCache)
	return cache, ok
}
