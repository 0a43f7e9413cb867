package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authzDomain "github.com/devkral/secretgraph/internal/authz/domain"
)

// TokenQueryParameter names the query parameter carrying additional tokens.
const TokenQueryParameter = "token"

// AuthsetMiddleware collects the cluster:key tokens of a request and creates
// its permission cache.
//
// Tokens are read from every Authorization header (comma separated, spaces
// ignored) and from repeated "token" query parameters. Malformed tokens are
// skipped: a request without valid tokens still sees public clusters, so the
// middleware never rejects a request.
//
// Usage:
//
//	router.Use(AuthsetMiddleware(logger))
//	router.GET("/v1/contents", func(c *gin.Context) {
//	    tokens, _ := GetAuthset(c.Request.Context())
//	    cache, _ := GetPermissionCache(c.Request.Context())
//	    ...
//	})
func AuthsetMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries := make([]string, 0)
		for _, header := range c.Request.Header.Values("Authorization") {
			entries = append(entries, strings.ReplaceAll(header, " ", ""))
		}
		entries = append(entries, c.QueryArray(TokenQueryParameter)...)

		tokens := authzDomain.ParseAuthset(entries...)
		if len(entries) > 0 && len(tokens) == 0 {
			logger.Debug("request carried no valid tokens", slog.Int("entries", len(entries)))
		}

		ctx := WithAuthset(c.Request.Context(), tokens)
		ctx = WithPermissionCache(ctx, authzDomain.NewPermissionCache())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
