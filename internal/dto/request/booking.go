package request

type QuoteRequest struct {
	TourID         string          `json:"tour_id" validate:"required,uuid"`
	TravelDate     string          `json:"travel_date" validate:"required,datetime=2006-01-02"`
	TicketsDetail  map[string]int  `json:"tickets_detail" validate:"required"`
	SelectedExtras map[string]bool `json:"selected_extras,omitempty"`
}

type CreateBookingRequest struct {
	QuoteRequest
	ContactName     string `json:"contact_name" validate:"required,max=200"`
	ContactEmail    string `json:"contact_email" validate:"required,email,max=254"`
	ContactPhone    string `json:"contact_phone" validate:"max=30"`
	SpecialRequests string `json:"special_requests" validate:"max=2000"`
}

type ConfirmPaymentRequest struct {
	PaymentID     string `json:"payment_id" validate:"required,max=100"`
	PaymentMethod string `json:"payment_method" validate:"required,max=50"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type RefundBookingRequest struct {
	Notes string `json:"notes" validate:"max=1000"`
}

type AdjustCapacityRequest struct {
	Delta int `json:"delta" validate:"ne=0"`
}

type BookingListRequest struct {
	PaginatedRequest
	Status string `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED REFUNDED"`
}
