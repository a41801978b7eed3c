package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusRefunded  BookingStatus = "REFUNDED"
)

// DefaultTicketType is the implicit ticket type used when a tour has no
// price variations; it is priced at the tour's final price.
const DefaultTicketType = "default"

// Booking is an immutable price snapshot plus a mutable status. None of the
// monetary fields are recomputed after creation.
type Booking struct {
	BaseNoDelete
	BookingCode   string    `db:"booking_code"`
	TourPackageID uuid.UUID `db:"tour_package_id"`
	TravelerID    uuid.UUID `db:"traveler_id"`
	TravelDate    time.Time `db:"travel_date"`

	TicketsDetail  map[string]int  `db:"tickets_detail"`
	TicketsPrices  PriceMap        `db:"tickets_prices"`
	SelectedExtras map[string]bool `db:"selected_extras"`
	ExtrasPrices   PriceMap        `db:"extras_prices"`

	SubtotalTickets  decimal.Decimal `db:"subtotal_tickets"`
	SubtotalExtras   decimal.Decimal `db:"subtotal_extras"`
	TotalAmount      decimal.Decimal `db:"total_amount"`
	CommissionAmount decimal.Decimal `db:"commission_amount"`
	OperatorAmount   decimal.Decimal `db:"operator_amount"`
	CommissionRate   decimal.Decimal `db:"commission_rate"`

	ContactName     string `db:"contact_name"`
	ContactEmail    string `db:"contact_email"`
	ContactPhone    string `db:"contact_phone"`
	SpecialRequests string `db:"special_requests"`

	Status        BookingStatus `db:"status"`
	PaymentID     *string       `db:"payment_id"`
	PaymentMethod *string       `db:"payment_method"`
	PaidAt        *time.Time    `db:"paid_at"`

	CancelledAt        *time.Time `db:"cancelled_at"`
	CancellationReason *string    `db:"cancellation_reason"`
}

// TotalPeople is the party size used for capacity and per-person extras.
func (b *Booking) TotalPeople() int {
	total := 0
	for _, n := range b.TicketsDetail {
		total += n
	}
	return total
}

// IsActive is true while the booking still holds capacity.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
