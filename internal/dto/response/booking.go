package response

import (
	"time"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/internal/domain"
	"tour-marketplace/internal/ledger"
)

type QuoteResponse struct {
	TicketsDetail    map[string]int    `json:"tickets_detail"`
	TicketsPrices    map[string]string `json:"tickets_prices"`
	SelectedExtras   map[string]bool   `json:"selected_extras"`
	ExtrasPrices     map[string]string `json:"extras_prices"`
	TotalPeople      int               `json:"total_people"`
	SubtotalTickets  string            `json:"subtotal_tickets"`
	SubtotalExtras   string            `json:"subtotal_extras"`
	TotalAmount      string            `json:"total_amount"`
	CommissionAmount string            `json:"commission_amount"`
	OperatorAmount   string            `json:"operator_amount"`
}

type BookingResponse struct {
	ID            string `json:"id"`
	BookingCode   string `json:"booking_code"`
	TourPackageID string `json:"tour_package_id"`
	TravelerID    string `json:"traveler_id"`
	TravelDate    string `json:"travel_date"`

	TicketsDetail  map[string]int    `json:"tickets_detail"`
	TicketsPrices  map[string]string `json:"tickets_prices"`
	SelectedExtras map[string]bool   `json:"selected_extras"`
	ExtrasPrices   map[string]string `json:"extras_prices"`
	TotalPeople    int               `json:"total_people"`

	SubtotalTickets  string `json:"subtotal_tickets"`
	SubtotalExtras   string `json:"subtotal_extras"`
	TotalAmount      string `json:"total_amount"`
	CommissionAmount string `json:"commission_amount"`
	OperatorAmount   string `json:"operator_amount"`
	CommissionRate   string `json:"commission_rate"`

	ContactName     string `json:"contact_name"`
	ContactEmail    string `json:"contact_email"`
	ContactPhone    string `json:"contact_phone,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`

	Status             entity.BookingStatus `json:"status"`
	CanBeCancelled     bool                 `json:"can_be_cancelled"`
	PaymentID          *string              `json:"payment_id,omitempty"`
	PaymentMethod      *string              `json:"payment_method,omitempty"`
	PaidAt             *time.Time           `json:"paid_at,omitempty"`
	CancelledAt        *time.Time           `json:"cancelled_at,omitempty"`
	CancellationReason *string              `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// VerifyResponse is the public view returned to anyone holding the code and
// contact email. It leaves out the platform's commission figures.
type VerifyResponse struct {
	BookingCode   string               `json:"booking_code"`
	TourPackageID string               `json:"tour_package_id"`
	TravelDate    string               `json:"travel_date"`
	ContactName   string               `json:"contact_name"`
	TotalPeople   int                  `json:"total_people"`
	TotalAmount   string               `json:"total_amount"`
	Status        entity.BookingStatus `json:"status"`
}

type TripsResponse struct {
	UpcomingTrips []BookingResponse `json:"upcoming_trips"`
	PastTrips     []BookingResponse `json:"past_trips"`
	TotalTrips    int               `json:"total_trips"`
}

type StatusHistoryResponse struct {
	ID         string               `json:"id"`
	FromStatus entity.BookingStatus `json:"from_status"`
	ToStatus   entity.BookingStatus `json:"to_status"`
	ChangedBy  *string              `json:"changed_by"`
	Notes      string               `json:"notes,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

// BookingStatsResponse carries revenue figures for operators and admins and
// the spent total for travelers; the other side is omitted.
type BookingStatsResponse struct {
	TotalBookings       int64   `json:"total_bookings"`
	PendingBookings     int64   `json:"pending_bookings"`
	ConfirmedBookings   int64   `json:"confirmed_bookings"`
	CancelledBookings   int64   `json:"cancelled_bookings"`
	CompletedBookings   int64   `json:"completed_bookings"`
	RefundedBookings    int64   `json:"refunded_bookings"`
	TotalRevenue        *string `json:"total_revenue,omitempty"`
	TotalCommission     *string `json:"total_commission,omitempty"`
	TotalSpent          *string `json:"total_spent,omitempty"`
	TotalPeople         int64   `json:"total_people"`
	AverageBookingValue string  `json:"average_booking_value"`
}

func QuoteToResponse(q *ledger.Quote) QuoteResponse {
	return QuoteResponse{
		TicketsDetail:    q.TicketsDetail,
		TicketsPrices:    Prices(q.TicketsPrices),
		SelectedExtras:   nonNilExtras(q.SelectedExtras),
		ExtrasPrices:     Prices(q.ExtrasPrices),
		TotalPeople:      q.TotalPeople,
		SubtotalTickets:  Money(q.SubtotalTickets),
		SubtotalExtras:   Money(q.SubtotalExtras),
		TotalAmount:      Money(q.TotalAmount),
		CommissionAmount: Money(q.CommissionAmount),
		OperatorAmount:   Money(q.OperatorAmount),
	}
}

func BookingToResponse(b *entity.Booking, today time.Time) BookingResponse {
	return BookingResponse{
		ID:                 b.ID.String(),
		BookingCode:        b.BookingCode,
		TourPackageID:      b.TourPackageID.String(),
		TravelerID:         b.TravelerID.String(),
		TravelDate:         b.TravelDate.Format(domain.DateLayout),
		TicketsDetail:      b.TicketsDetail,
		TicketsPrices:      Prices(b.TicketsPrices),
		SelectedExtras:     nonNilExtras(b.SelectedExtras),
		ExtrasPrices:       Prices(b.ExtrasPrices),
		TotalPeople:        b.TotalPeople(),
		SubtotalTickets:    Money(b.SubtotalTickets),
		SubtotalExtras:     Money(b.SubtotalExtras),
		TotalAmount:        Money(b.TotalAmount),
		CommissionAmount:   Money(b.CommissionAmount),
		OperatorAmount:     Money(b.OperatorAmount),
		CommissionRate:     b.CommissionRate.StringFixed(4),
		ContactName:        b.ContactName,
		ContactEmail:       b.ContactEmail,
		ContactPhone:       b.ContactPhone,
		SpecialRequests:    b.SpecialRequests,
		Status:             b.Status,
		CanBeCancelled:     ledger.CanBeCancelled(b, today),
		PaymentID:          b.PaymentID,
		PaymentMethod:      b.PaymentMethod,
		PaidAt:             b.PaidAt,
		CancelledAt:        b.CancelledAt,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func BookingsToResponse(bookings []*entity.Booking, today time.Time) []BookingResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, BookingToResponse(b, today))
	}
	return out
}

func BookingToVerifyResponse(b *entity.Booking) VerifyResponse {
	return VerifyResponse{
		BookingCode:   b.BookingCode,
		TourPackageID: b.TourPackageID.String(),
		TravelDate:    b.TravelDate.Format(domain.DateLayout),
		ContactName:   b.ContactName,
		TotalPeople:   b.TotalPeople(),
		TotalAmount:   Money(b.TotalAmount),
		Status:        b.Status,
	}
}

func HistoryToResponse(entries []*entity.BookingStatusHistory) []StatusHistoryResponse {
	out := make([]StatusHistoryResponse, 0, len(entries))
	for _, e := range entries {
		var changedBy *string
		if e.ChangedBy != nil {
			s := e.ChangedBy.String()
			changedBy = &s
		}
		out = append(out, StatusHistoryResponse{
			ID:         e.ID.String(),
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			ChangedBy:  changedBy,
			Notes:      e.Notes,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}

// StatsToResponse shows revenue to operators and admins, spent to travelers.
func StatsToResponse(s *entity.BookingStats, revenueView bool) BookingStatsResponse {
	out := BookingStatsResponse{
		TotalBookings:       s.TotalBookings,
		PendingBookings:     s.PendingBookings,
		ConfirmedBookings:   s.ConfirmedBookings,
		CancelledBookings:   s.CancelledBookings,
		CompletedBookings:   s.CompletedBookings,
		RefundedBookings:    s.RefundedBookings,
		TotalPeople:         s.TotalPeople,
		AverageBookingValue: Money(s.AverageBookingValue),
	}
	if revenueView {
		revenue, commission := Money(s.TotalRevenue), Money(s.TotalCommission)
		out.TotalRevenue, out.TotalCommission = &revenue, &commission
	} else {
		spent := Money(s.TotalSpent)
		out.TotalSpent = &spent
	}
	return out
}

func nonNilExtras(m map[string]bool) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	return m
}
