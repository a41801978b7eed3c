package usecase

import (
	"context"

	"tour-marketplace/internal/data/entity"

	"go.uber.org/zap"
)

// BookingHook observes committed booking changes. A failing hook is logged
// and never undoes or fails the change it observed.
type BookingHook interface {
	OnBookingEvent(ctx context.Context, event entity.BookingEvent) error
}

type BookingHookFunc func(ctx context.Context, event entity.BookingEvent) error

func (f BookingHookFunc) OnBookingEvent(ctx context.Context, event entity.BookingEvent) error {
	return f(ctx, event)
}

func runHooks(ctx context.Context, hooks []BookingHook, event entity.BookingEvent, log *zap.Logger) {
	for _, hook := range hooks {
		if err := hook.OnBookingEvent(ctx, event); err != nil {
			log.Warn("Booking hook failed",
				zap.Error(err),
				zap.String("event", string(event.Type)),
				zap.String("booking_code", event.Booking.BookingCode),
			)
		}
	}
}
