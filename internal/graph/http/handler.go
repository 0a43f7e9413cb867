// Package http provides HTTP handlers for clusters, contents, keys and actions.
// Every handler authorizes through the tokens parsed by the authset middleware.
package http

import (
	"github.com/gin-gonic/gin"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
	authzHTTP "github.com/devkral/secretgraph/internal/authz/http"
	graphUsecase "github.com/devkral/secretgraph/internal/graph/usecase"
)

// requestAccess returns the credentials of the request. Without the authset
// middleware the request is anonymous with a private cache.
func requestAccess(c *gin.Context) graphUsecase.Access {
	ctx := c.Request.Context()
	tokens, _ := authzHTTP.GetAuthset(ctx)
	cache, ok := authzHTTP.GetPermissionCache(ctx)
	if !ok {
		cache = authzDomain.NewPermissionCache()
	}
	return graphUsecase.Access{Cache: cache, Authset: tokens}
}
