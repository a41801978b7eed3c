package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingEventType string

const (
	BookingEventCreated       BookingEventType = "booking.created"
	BookingEventStatusChanged BookingEventType = "booking.status_changed"
)

// BookingEvent is handed to post-commit hooks once the change is durable.
type BookingEvent struct {
	Type       BookingEventType
	Booking    *Booking
	FromStatus BookingStatus
	ToStatus   BookingStatus
	ActorID    *uuid.UUID
	OccurredAt time.Time
}
