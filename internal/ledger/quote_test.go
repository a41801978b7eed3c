package ledger_test

import (
	"testing"
	"time"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/internal/domain"
	"tour-marketplace/internal/ledger"
	"tour-marketplace/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dayAt(offset int) *time.Time {
	d := domain.Day(today).AddDate(0, 0, offset)
	return &d
}

// tourFixture returns a published open-dates tour priced through the engine.
func tourFixture(t *testing.T, variations, extras pricing.RawPrices) *entity.TourPackage {
	t.Helper()
	tour := &entity.TourPackage{
		GroupSize:        10,
		Status:           entity.TourStatusPublished,
		IsActive:         true,
		AvailabilityType: entity.AvailabilityOpenDates,
		AvailableFrom:    dayAt(0),
		AvailableUntil:   dayAt(60),
	}
	priced, err := pricing.PriceTour(dec("100.00"), dec("0.10"), variations, extras)
	require.NoError(t, err)
	priced.Apply(tour)
	return tour
}

func TestQuoteBooking_TwoAdults(t *testing.T) {
	tour := tourFixture(t, pricing.RawPrices{"adulto": "100.00"}, nil)

	q, err := ledger.QuoteBooking(tour, map[string]int{"adulto": 2}, nil, *dayAt(3), today)

	require.NoError(t, err)
	assert.Equal(t, "110.00", q.TicketsPrices["adulto"].StringFixed(2))
	assert.Equal(t, "220.00", q.SubtotalTickets.StringFixed(2))
	assert.Equal(t, "0.00", q.SubtotalExtras.StringFixed(2))
	assert.Equal(t, "220.00", q.TotalAmount.StringFixed(2))
	assert.Equal(t, "20.00", q.CommissionAmount.StringFixed(2))
	assert.Equal(t, "200.00", q.OperatorAmount.StringFixed(2))
	assert.Equal(t, 2, q.TotalPeople)
}

func TestQuoteBooking_ExtrasChargedPerPerson(t *testing.T) {
	tour := tourFixture(t,
		pricing.RawPrices{"adulto": "100.00", "nino": "50.00"},
		pricing.RawPrices{"comidas": "20.00", "seguro": "10.00"},
	)

	q, err := ledger.QuoteBooking(tour,
		map[string]int{"adulto": 2, "nino": 1},
		map[string]bool{"comidas": true, "seguro": false},
		*dayAt(3), today)

	require.NoError(t, err)
	// 2*110 + 1*55
	assert.Equal(t, "275.00", q.SubtotalTickets.StringFixed(2))
	// 22 * 3 people
	assert.Equal(t, "66.00", q.SubtotalExtras.StringFixed(2))
	assert.Equal(t, "341.00", q.TotalAmount.StringFixed(2))
	assert.Equal(t, "31.00", q.CommissionAmount.StringFixed(2))
	assert.Equal(t, "310.00", q.OperatorAmount.StringFixed(2))
	assert.Contains(t, q.ExtrasPrices, "comidas")
	assert.NotContains(t, q.ExtrasPrices, "seguro")
	assert.False(t, q.SelectedExtras["seguro"])
}

func TestQuoteBooking_DefaultTicketType(t *testing.T) {
	tour := tourFixture(t, nil, nil)

	q, err := ledger.QuoteBooking(tour, map[string]int{"default": 3}, nil, *dayAt(1), today)
	require.NoError(t, err)
	assert.Equal(t, "330.00", q.TotalAmount.StringFixed(2))
	assert.Equal(t, map[string]int{"default": 3}, q.TicketsDetail)

	_, err = ledger.QuoteBooking(tour, map[string]int{"adulto": 1}, nil, *dayAt(1), today)
	assert.ErrorIs(t, err, domain.ErrInvalidTicketType)
}

func TestQuoteBooking_SnapshotIsIndependentOfTour(t *testing.T) {
	tour := tourFixture(t, pricing.RawPrices{"adulto": "100.00"}, pricing.RawPrices{"fotos": "5"})

	q, err := ledger.QuoteBooking(tour, map[string]int{"adulto": 1}, map[string]bool{"fotos": true}, *dayAt(1), today)
	require.NoError(t, err)

	tour.PriceVariationsWithCommission["adulto"] = dec("999")
	tour.ExtraServicesWithCommission["fotos"] = dec("999")

	assert.Equal(t, "110.00", q.TicketsPrices["adulto"].StringFixed(2))
	assert.Equal(t, "5.50", q.ExtrasPrices["fotos"].StringFixed(2))
}

func TestQuoteBooking_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*entity.TourPackage)
		tickets map[string]int
		extras  map[string]bool
		travel  time.Time
		want    error
	}{
		{"inactive tour", func(t *entity.TourPackage) { t.IsActive = false }, map[string]int{"adulto": 1}, nil, *dayAt(1), domain.ErrTourUnavailable},
		{"draft tour", func(t *entity.TourPackage) { t.Status = entity.TourStatusDraft }, map[string]int{"adulto": 1}, nil, *dayAt(1), domain.ErrTourUnavailable},
		{"no tickets", nil, map[string]int{}, nil, *dayAt(1), domain.ErrEmptyBooking},
		{"zero tickets", nil, map[string]int{"adulto": 0}, nil, *dayAt(1), domain.ErrEmptyBooking},
		{"negative count", nil, map[string]int{"adulto": 3, "nino": -1}, nil, *dayAt(1), domain.ErrEmptyBooking},
		{"unknown type", nil, map[string]int{"vip": 1}, nil, *dayAt(1), domain.ErrInvalidTicketType},
		{"unknown extra", nil, map[string]int{"adulto": 1}, map[string]bool{"spa": true}, *dayAt(1), domain.ErrInvalidTicketType},
		{"over capacity", func(t *entity.TourPackage) { t.CurrentBookings = 9 }, map[string]int{"adulto": 2}, nil, *dayAt(1), domain.ErrCapacityExceeded},
		{"past date", nil, map[string]int{"adulto": 1}, nil, *dayAt(-1), domain.ErrDateOutOfRange},
		{"after window", nil, map[string]int{"adulto": 1}, nil, *dayAt(61), domain.ErrDateOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tour := tourFixture(t, pricing.RawPrices{"adulto": "100.00", "nino": "50.00"}, nil)
			if tt.mutate != nil {
				tt.mutate(tour)
			}

			q, err := ledger.QuoteBooking(tour, tt.tickets, tt.extras, tt.travel, today)

			assert.Nil(t, q)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestQuoteBooking_QuotingDoesNotTouchCapacity(t *testing.T) {
	tour := tourFixture(t, pricing.RawPrices{"adulto": "100.00"}, nil)
	tour.CurrentBookings = 4

	_, err := ledger.QuoteBooking(tour, map[string]int{"adulto": 6}, nil, *dayAt(1), today)
	require.NoError(t, err)
	assert.Equal(t, 4, tour.CurrentBookings)
}

func TestCheckTravelDate_SpecificDate(t *testing.T) {
	tour := tourFixture(t, nil, nil)
	tour.AvailabilityType = entity.AvailabilitySpecificDate
	tour.AvailableFrom, tour.AvailableUntil = nil, nil
	tour.DepartureDate = dayAt(7)

	assert.NoError(t, ledger.CheckTravelDate(tour, *dayAt(7), today))

	err := ledger.CheckTravelDate(tour, *dayAt(8), today)
	require.ErrorIs(t, err, domain.ErrDateOutOfRange)
	assert.Contains(t, err.Error(), dayAt(7).Format(domain.DateLayout))
}

func TestSplitCommission_ReconstructsTotal(t *testing.T) {
	rates := []string{"0", "0.07", "0.10", "0.125", "0.15", "0.33", "1"}
	totals := []string{"0.01", "1.00", "19.99", "110.00", "333.33", "1234.56", "99999.99"}

	for _, r := range rates {
		for _, tot := range totals {
			commission, operator := ledger.SplitCommission(dec(tot), dec(r))

			assert.True(t, commission.Add(operator).Equal(dec(tot)), "rate=%s total=%s", r, tot)
			assert.LessOrEqual(t, -commission.Exponent(), int32(2), "commission has sub-cent digits")
			assert.False(t, commission.IsNegative())
		}
	}
}

func TestQuoteBooking_HugeCountsDoNotWrap(t *testing.T) {
	tour := tourFixture(t, pricing.RawPrices{"a": "10", "b": "10", "c": "10", "d": "10"}, nil)
	tickets := map[string]int{"a": 1 << 62, "b": 1 << 62, "c": 1 << 62, "d": 1<<62 + 1}

	q, err := ledger.QuoteBooking(tour, tickets, nil, *dayAt(1), today)

	assert.Nil(t, q)
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, []string{"tickets_detail.a"}, derr.Fields)
}

func TestQuoteBooking_CapacityNamesOverflowingType(t *testing.T) {
	tour := tourFixture(t, pricing.RawPrices{"adulto": "100.00", "nino": "50.00"}, nil)
	tour.CurrentBookings = 6

	_, err := ledger.QuoteBooking(tour, map[string]int{"adulto": 3, "nino": 2}, nil, *dayAt(1), today)

	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.KindCapacityExceeded, derr.Kind)
	assert.Equal(t, []string{"tickets_detail.nino"}, derr.Fields)
	assert.Contains(t, derr.Message, "only 4 slots available")
}
