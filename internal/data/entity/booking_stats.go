package entity

import "github.com/shopspring/decimal"

// BookingStats is a read model aggregated over a set of bookings. TotalSpent
// is what travelers paid, TotalRevenue the operators' share.
type BookingStats struct {
	TotalBookings     int64
	PendingBookings   int64
	ConfirmedBookings int64
	CancelledBookings int64
	CompletedBookings int64
	RefundedBookings  int64

	TotalSpent          decimal.Decimal
	TotalRevenue        decimal.Decimal
	TotalCommission     decimal.Decimal
	AverageBookingValue decimal.Decimal
	TotalPeople         int64
}
