package ledger

import (
	"fmt"
	"time"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/internal/domain"
)

var transitions = map[entity.BookingStatus][]entity.BookingStatus{
	entity.BookingStatusPending:   {entity.BookingStatusConfirmed, entity.BookingStatusCancelled},
	entity.BookingStatusConfirmed: {entity.BookingStatusCancelled, entity.BookingStatusCompleted, entity.BookingStatusRefunded},
	entity.BookingStatusCompleted: {entity.BookingStatusRefunded},
}

// CanTransition reports whether from -> to is an edge of the status machine.
func CanTransition(from, to entity.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition fails with InvalidTransition for any edge not in the
// machine.
func CheckTransition(from, to entity.BookingStatus) error {
	if !CanTransition(from, to) {
		return domain.New(domain.KindInvalidTransition,
			fmt.Sprintf("cannot move booking from %s to %s", from, to), "status")
	}
	return nil
}

// CheckCancellable applies the cancellation rules: the edge must exist and
// the travel date must not have passed.
func CheckCancellable(b *entity.Booking, today time.Time) error {
	if err := CheckTransition(b.Status, entity.BookingStatusCancelled); err != nil {
		return err
	}
	if domain.Day(b.TravelDate).Before(domain.Day(today)) {
		return domain.New(domain.KindInvalidTransition, "travel date has already passed", "travel_date")
	}
	return nil
}

// CanBeCancelled is CheckCancellable as a predicate for read models.
func CanBeCancelled(b *entity.Booking, today time.Time) bool {
	return CheckCancellable(b, today) == nil
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status entity.BookingStatus) bool {
	return len(transitions[status]) == 0
}

// ReleasesCapacity reports whether moving into status hands the booking's
// seats back to the tour.
func ReleasesCapacity(from, to entity.BookingStatus) bool {
	return to == entity.BookingStatusCancelled && (from == entity.BookingStatusPending || from == entity.BookingStatusConfirmed)
}
