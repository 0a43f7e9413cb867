package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	deletionUsecase "github.com/devkral/secretgraph/internal/deletion/usecase"
	graphUsecase "github.com/devkral/secretgraph/internal/graph/usecase"
	keyhashUsecase "github.com/devkral/secretgraph/internal/keyhash/usecase"
)

// RunSweep runs one lazy garbage collection pass: expired contents are deleted
// with their dependents and expired empty clusters are removed.
//
// Requirements: Database must be migrated and accessible.
func RunSweep(
	ctx context.Context,
	sweeper deletionUsecase.Sweeper,
	logger *slog.Logger,
	writer io.Writer,
	now time.Time,
	format string,
) error {
	logger.Info("sweeping expired contents and clusters", slog.Time("now", now))

	if err := sweeper.Sweep(ctx, now); err != nil {
		return fmt.Errorf("failed to sweep: %w", err)
	}

	if format == "json" {
		if err := outputJSON(writer, map[string]any{"swept_at": now.UTC().Format(time.RFC3339)}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Sweep completed at %s\n", now.UTC().Format(time.RFC3339))
	}

	logger.Info("sweep completed")
	return nil
}

// RunRegenerateKeyHashes migrates public key hashes to the configured digest
// algorithms. With force every public key is rechecked. It is safe to rerun.
//
// Requirements: Database must be migrated and accessible.
func RunRegenerateKeyHashes(
	ctx context.Context,
	keyHashUseCase keyhashUsecase.KeyHashUseCase,
	logger *slog.Logger,
	writer io.Writer,
	force bool,
	format string,
) error {
	logger.Info("regenerating key hashes", slog.Bool("force", force))

	report, err := keyHashUseCase.Regenerate(ctx, force)
	if err != nil {
		return fmt.Errorf("failed to regenerate key hashes: %w", err)
	}

	if format == "json" {
		if err := outputJSON(writer, map[string]any{
			"scanned":         report.Scanned,
			"migrated":        report.Migrated,
			"tagged_contents": report.TaggedContents,
		}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(
			writer,
			"Scanned %d public key(s), migrated %d, retagged %d content(s)\n",
			report.Scanned, report.Migrated, report.TaggedContents,
		)
	}

	logger.Info("key hashes regenerated",
		slog.Int("scanned", report.Scanned),
		slog.Int("migrated", report.Migrated),
	)
	return nil
}

// RunFillFlexIDs assigns flexids to clusters and contents lacking one.
//
// Requirements: Database must be migrated and accessible.
func RunFillFlexIDs(
	ctx context.Context,
	clusterUseCase graphUsecase.ClusterUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("filling missing flexids")

	filled, err := clusterUseCase.FillFlexIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fill flexids: %w", err)
	}

	if format == "json" {
		if err := outputJSON(writer, map[string]any{"filled": filled}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Filled %d missing flexid(s)\n", filled)
	}

	logger.Info("flexids filled", slog.Int("filled", filled))
	return nil
}
