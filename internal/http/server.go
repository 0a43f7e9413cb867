// Package http provides the HTTP server, its middleware and route setup.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authzHTTP "github.com/devkral/secretgraph/internal/authz/http"
	"github.com/devkral/secretgraph/internal/config"
	graphHTTP "github.com/devkral/secretgraph/internal/graph/http"
	"github.com/devkral/secretgraph/internal/metrics"
)

// Server represents the HTTP server
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server. SetupRouter must run before Start.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter registers the middleware chain and every route.
//
// The /v1 group parses the credential tokens of each request; rate limiting
// applies per client IP when enabled. Health endpoints stay outside the group.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	clusterHandler *graphHTTP.ClusterHandler,
	contentHandler *graphHTTP.ContentHandler,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	v1.Use(authzHTTP.AuthsetMiddleware(s.logger))
	{
		clusters := v1.Group("/clusters")
		clusters.POST("", clusterHandler.CreateHandler)
		clusters.GET("", clusterHandler.ListHandler)
		clusters.PUT("/:id/deletion", clusterHandler.ScheduleDeletionHandler)
		clusters.POST("/:id/actions", clusterHandler.CreateActionsHandler)

		v1.POST("/keys", contentHandler.CreateKeyHandler)

		contents := v1.Group("/contents")
		contents.POST("", contentHandler.CreateHandler)
		contents.GET("", contentHandler.ListHandler)
		contents.GET("/:id", contentHandler.GetHandler)
		contents.PUT("/:id", contentHandler.UpdateHandler)
		contents.DELETE("/:id", contentHandler.DeleteHandler)
		contents.PATCH("/:id/metadata", contentHandler.UpdateMetadataHandler)
		contents.PUT("/:id/deletion", contentHandler.ScheduleDeletionHandler)
		contents.POST("/:id/transfer", contentHandler.TransferHandler)
	}

	s.router = router
}

// GetHandler returns the router built by SetupRouter.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready once the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
