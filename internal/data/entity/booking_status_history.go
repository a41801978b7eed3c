package entity

import (
	"github.com/google/uuid"
)

// BookingStatusHistory is an append-only audit row, one per transition.
// ChangedBy is nil for system actors such as the completion sweeper.
type BookingStatusHistory struct {
	BaseSimple
	BookingID  uuid.UUID     `db:"booking_id"`
	FromStatus BookingStatus `db:"from_status"`
	ToStatus   BookingStatus `db:"to_status"`
	ChangedBy  *uuid.UUID    `db:"changed_by"`
	Notes      string        `db:"notes"`
}
