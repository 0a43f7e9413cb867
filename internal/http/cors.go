package http

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// createCORSMiddleware returns the CORS middleware for browser clients of the
// graph, or nil when CORS is disabled or no origin is configured.
//
// allowOriginsStr is a comma-separated origin list; a single "*" admits every
// origin. Tokens travel in the Authorization header or the token query
// parameter, never in cookies, so credentials stay disallowed.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOriginsStr)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no origins configured - CORS will not be applied")
		return nil
	}

	config := cors.Config{
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
		},
		AllowHeaders: []string{
			"Authorization",
			"Content-Type",
			"X-Request-Id",
		},
		ExposeHeaders: []string{
			"X-Request-Id",
		},
		MaxAge: 12 * time.Hour,
	}

	if len(origins) == 1 && origins[0] == "*" {
		config.AllowAllOrigins = true
		logger.Info("CORS enabled for all origins")
	} else {
		config.AllowOrigins = origins
		logger.Info("CORS enabled", slog.Any("origins", origins))
	}

	return cors.New(config)
}

// parseOrigins splits a comma-separated origin list, dropping blank entries.
func parseOrigins(originsStr string) []string {
	var origins []string
	for _, part := range strings.Split(originsStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
