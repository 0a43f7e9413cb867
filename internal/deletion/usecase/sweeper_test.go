package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) Sweep(ctx context.Context, now time.Time) error {
	s.calls.Add(1)
	return s.err
}

func TestPeriodicSweeper_Start(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("SweepsUntilCancelled", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		sweeper := &countingSweeper{}
		p := NewPeriodicSweeper(5*time.Millisecond, sweeper, logger)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- p.Start(ctx) }()

		require.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("sweeper did not stop")
		}
	})

	t.Run("ContinuesAfterFailure", func(t *testing.T) {
		defer goleak.VerifyNone(t)

		sweeper := &countingSweeper{err: assert.AnError}
		p := NewPeriodicSweeper(5*time.Millisecond, sweeper, logger)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- p.Start(ctx) }()

		require.Eventually(t, func() bool { return sweeper.calls.Load() >= 3 }, time.Second, time.Millisecond)
		cancel()
		<-done
	})

	t.Run("Disabled", func(t *testing.T) {
		sweeper := &countingSweeper{}
		p := NewPeriodicSweeper(0, sweeper, logger)

		require.NoError(t, p.Start(context.Background()))
		assert.Zero(t, sweeper.calls.Load())
	})
}
