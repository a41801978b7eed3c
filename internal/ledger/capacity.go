package ledger

import (
	"fmt"

	"tour-marketplace/internal/domain"
)

// CheckIncrement validates current+count <= groupSize. The storage layer
// performs the same check inside its conditional UPDATE; this version lets
// callers and in-memory stores share one rule and one error shape.
func CheckIncrement(current, groupSize, count int) error {
	if count <= 0 {
		return domain.New(domain.KindValidation, "increment must be positive", "count")
	}
	if current+count > groupSize {
		return CapacityExceeded(groupSize-current, count)
	}
	return nil
}

// CheckDecrement validates current-count >= 0.
func CheckDecrement(current, count int) error {
	if count <= 0 {
		return domain.New(domain.KindValidation, "decrement must be positive", "count")
	}
	if current-count < 0 {
		return NegativeCapacity(current, count)
	}
	return nil
}

func CapacityExceeded(available, requested int) error {
	return domain.New(domain.KindCapacityExceeded,
		fmt.Sprintf("requested %d slots but only %d available", requested, max(available, 0)), "current_bookings")
}

func NegativeCapacity(current, requested int) error {
	return domain.New(domain.KindNegativeCapacity,
		fmt.Sprintf("cannot release %d slots from %d booked", requested, current), "current_bookings")
}
