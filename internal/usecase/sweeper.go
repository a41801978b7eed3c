package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const sweepBatch = 100

// CompletionSweeper periodically completes CONFIRMED bookings whose travel
// date has passed. History rows it writes have no actor.
type CompletionSweeper struct {
	bookings BookingService
	interval time.Duration
	log      *zap.Logger
}

func NewCompletionSweeper(bookings BookingService, interval time.Duration, log *zap.Logger) *CompletionSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CompletionSweeper{
		bookings: bookings,
		interval: interval,
		log:      log.With(zap.String("worker", "completion_sweeper")),
	}
}

// Run blocks until ctx is cancelled.
func (w *CompletionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("Completion sweeper started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Completion sweeper stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep drains every due booking in batches.
func (w *CompletionSweeper) Sweep(ctx context.Context) int {
	total := 0
	for ctx.Err() == nil {
		n, err := w.bookings.CompleteDue(ctx, sweepBatch)
		total += n
		if err != nil {
			w.log.Error("Completion sweep failed", zap.Error(err), zap.Int("completed", total))
			return total
		}
		if n < sweepBatch {
			break
		}
	}

	if total > 0 {
		w.log.Info("Completed past bookings", zap.Int("count", total))
	}
	return total
}
