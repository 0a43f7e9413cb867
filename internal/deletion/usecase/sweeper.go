package usecase

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper runs one lazy garbage collection pass.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) error
}

// PeriodicSweeper runs a Sweeper on a fixed interval.
type PeriodicSweeper struct {
	interval time.Duration
	sweeper  Sweeper
	logger   *slog.Logger
}

// NewPeriodicSweeper creates a PeriodicSweeper. A non-positive interval disables it.
func NewPeriodicSweeper(interval time.Duration, sweeper Sweeper, logger *slog.Logger) *PeriodicSweeper {
	return &PeriodicSweeper{
		interval: interval,
		sweeper:  sweeper,
		logger:   logger,
	}
}

// Start sweeps every interval until ctx is done. Failed passes are logged and
// retried on the next tick. It returns nil right away when disabled and
// otherwise the context error.
func (p *PeriodicSweeper) Start(ctx context.Context) error {
	if p.interval <= 0 {
		p.logger.Info("periodic sweeper disabled")
		return nil
	}

	p.logger.Info("starting periodic sweeper", slog.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("stopping periodic sweeper")
			return ctx.Err()
		case now := <-ticker.C:
			if err := p.sweeper.Sweep(ctx, now); err != nil {
				p.logger.Error("failed to sweep", slog.Any("error", err))
			}
		}
	}
}
