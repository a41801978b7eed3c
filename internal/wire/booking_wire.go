package wire

import (
	"net/http"

	"tour-marketplace/internal/adaptor"
	"tour-marketplace/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, idempotent func(http.Handler) http.Handler) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/api/bookings/quote", bookingHandler.Quote)
	r.Get("/api/bookings/verify", bookingHandler.VerifyBooking)

	// ==================== ACTOR ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireActor)

		r.With(idempotent).Post("/api/bookings", bookingHandler.CreateBooking)
		r.Get("/api/bookings/stats", bookingHandler.GetStats)
		r.Get("/api/traveler/trips", bookingHandler.GetTrips)
		r.Get("/api/operator/bookings", bookingHandler.GetIncoming)

		r.Post("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)
		r.Post("/api/bookings/{id}/confirm-payment", bookingHandler.ConfirmPayment)
		r.Post("/api/bookings/{id}/complete", bookingHandler.CompleteBooking)
		r.Post("/api/bookings/{id}/refund", bookingHandler.RefundBooking)
	})

	// ==================== BOOKING LOOKUPS ====================
	r.Get("/api/bookings/code/{code}", bookingHandler.GetBookingByCode)
	r.Get("/api/bookings/{id}", bookingHandler.GetBooking)
	r.Get("/api/bookings/{id}/history", bookingHandler.GetHistory)
}
