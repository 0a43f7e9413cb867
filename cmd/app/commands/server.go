package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/devkral/secretgraph/internal/app"
	"github.com/devkral/secretgraph/internal/config"
)

// Server is a listener with graceful shutdown.
type Server interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Worker is a background loop running until its context ends.
type Worker interface {
	Start(ctx context.Context) error
}

// RunServer starts the API server, the metrics server when enabled and the
// periodic sweeper. It blocks until SIGINT/SIGTERM or until one of them fails,
// then shuts everything down within DBConnMaxLifetime.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	server, err := container.HTTPServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	servers := []Server{server}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}
	if metricsServer != nil {
		servers = append(servers, metricsServer)
	}

	sweeper, err := container.PeriodicSweeper()
	if err != nil {
		return fmt.Errorf("failed to initialize periodic sweeper: %w", err)
	}

	return Serve(ctx, logger, cfg.DBConnMaxLifetime, servers, []Worker{sweeper})
}

// Serve runs servers and workers until ctx ends or one of them fails. Servers
// are then shut down within shutdownTimeout. Workers stop with the context.
func Serve(
	ctx context.Context,
	logger *slog.Logger,
	shutdownTimeout time.Duration,
	servers []Server,
	workers []Worker,
) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, server := range servers {
		g.Go(func() error {
			return server.Start(gctx)
		})
	}

	for _, worker := range workers {
		g.Go(func() error {
			if err := worker.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			logger.Info("shutdown signal received")
		} else {
			logger.Error("server error, initiating shutdown")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		var shutdownErrors []error
		for _, server := range servers {
			if err := server.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("server shutdown: %w", err))
			}
		}
		return errors.Join(shutdownErrors...)
	})

	return g.Wait()
}
