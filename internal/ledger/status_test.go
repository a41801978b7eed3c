package ledger_test

import (
	"testing"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/internal/domain"
	"tour-marketplace/internal/ledger"

	"github.com/stretchr/testify/assert"
)

func TestCheckTransition_Matrix(t *testing.T) {
	all := []entity.BookingStatus{
		entity.BookingStatusPending,
		entity.BookingStatusConfirmed,
		entity.BookingStatusCancelled,
		entity.BookingStatusCompleted,
		entity.BookingStatusRefunded,
	}
	allowed := map[[2]entity.BookingStatus]bool{
		{entity.BookingStatusPending, entity.BookingStatusConfirmed}:   true,
		{entity.BookingStatusPending, entity.BookingStatusCancelled}:   true,
		{entity.BookingStatusConfirmed, entity.BookingStatusCancelled}: true,
		{entity.BookingStatusConfirmed, entity.BookingStatusCompleted}: true,
		{entity.BookingStatusConfirmed, entity.BookingStatusRefunded}:  true,
		{entity.BookingStatusCompleted, entity.BookingStatusRefunded}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			err := ledger.CheckTransition(from, to)
			if allowed[[2]entity.BookingStatus{from, to}] {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidTransition, "%s -> %s", from, to)
			}
		}
	}

	assert.True(t, ledger.IsTerminal(entity.BookingStatusCancelled))
	assert.True(t, ledger.IsTerminal(entity.BookingStatusRefunded))
	assert.False(t, ledger.IsTerminal(entity.BookingStatusCompleted))
}

func TestCheckCancellable(t *testing.T) {
	b := &entity.Booking{Status: entity.BookingStatusConfirmed, TravelDate: *dayAt(0)}
	assert.NoError(t, ledger.CheckCancellable(b, today), "same-day cancellation is allowed")

	b.TravelDate = *dayAt(-1)
	assert.ErrorIs(t, ledger.CheckCancellable(b, today), domain.ErrInvalidTransition)

	b = &entity.Booking{Status: entity.BookingStatusCompleted, TravelDate: *dayAt(5)}
	assert.ErrorIs(t, ledger.CheckCancellable(b, today), domain.ErrInvalidTransition)
	assert.False(t, ledger.CanBeCancelled(b, today))
}

func TestReleasesCapacity(t *testing.T) {
	assert.True(t, ledger.ReleasesCapacity(entity.BookingStatusPending, entity.BookingStatusCancelled))
	assert.True(t, ledger.ReleasesCapacity(entity.BookingStatusConfirmed, entity.BookingStatusCancelled))
	assert.False(t, ledger.ReleasesCapacity(entity.BookingStatusConfirmed, entity.BookingStatusRefunded))
	assert.False(t, ledger.ReleasesCapacity(entity.BookingStatusCompleted, entity.BookingStatusRefunded))
}
