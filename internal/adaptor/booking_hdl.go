package adaptor

import (
	"net/http"

	"tour-marketplace/internal/dto/request"
	"tour-marketplace/internal/usecase"
	"tour-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// Quote handles POST /api/bookings/quote (public)
func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req request.QuoteRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	quote, err := h.service.Quote(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "quote booking")
		return
	}

	utils.ResponseSuccess(w, "success", quote)
}

// CreateBooking handles POST /api/bookings (traveler)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.CreateBookingRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	booking, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "Booking created", booking)
}

// GetBooking handles GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// GetBookingByCode handles GET /api/bookings/code/{code}
func (h *BookingHandler) GetBookingByCode(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		handleServiceError(w, h.log, err, "get booking by code")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// VerifyBooking handles GET /api/bookings/verify?code=&email= (public)
func (h *BookingHandler) VerifyBooking(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	booking, err := h.service.Verify(r.Context(), query.Get("code"), query.Get("email"))
	if err != nil {
		handleServiceError(w, h.log, err, "verify booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// GetHistory handles GET /api/bookings/{id}/history
func (h *BookingHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get booking history")
		return
	}

	utils.ResponseSuccess(w, "success", history)
}

// CancelBooking handles POST /api/bookings/{id}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.CancelBookingRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	booking, err := h.service.Cancel(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled", booking)
}

// ConfirmPayment handles POST /api/bookings/{id}/confirm-payment
func (h *BookingHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.ConfirmPaymentRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	booking, err := h.service.ConfirmPayment(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "confirm payment")
		return
	}

	utils.ResponseSuccess(w, "Payment confirmed", booking)
}

// CompleteBooking handles POST /api/bookings/{id}/complete
func (h *BookingHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	booking, err := h.service.Complete(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "complete booking")
		return
	}

	utils.ResponseSuccess(w, "Booking completed", booking)
}

// RefundBooking handles POST /api/bookings/{id}/refund
func (h *BookingHandler) RefundBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.RefundBookingRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	booking, err := h.service.Refund(r.Context(), actor, chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "refund booking")
		return
	}

	utils.ResponseSuccess(w, "Booking refunded", booking)
}

// GetTrips handles GET /api/traveler/trips (traveler)
func (h *BookingHandler) GetTrips(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	trips, err := h.service.Trips(r.Context(), actor, r.URL.Query().Get("status"))
	if err != nil {
		handleServiceError(w, h.log, err, "get trips")
		return
	}

	utils.ResponseSuccess(w, "success", trips)
}

// GetIncoming handles GET /api/operator/bookings (operator)
func (h *BookingHandler) GetIncoming(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := &request.BookingListRequest{Status: query.Get("status")}
	req.Page = utils.ParseInt(query.Get("page"), 1)
	req.PerPage = utils.ParseInt(query.Get("per_page"), 0)

	bookings, err := h.service.Incoming(r.Context(), actor, req)
	if err != nil {
		handleServiceError(w, h.log, err, "get incoming bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetStats handles GET /api/bookings/stats
func (h *BookingHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), actor)
	if err != nil {
		handleServiceError(w, h.log, err, "get booking stats")
		return
	}

	utils.ResponseSuccess(w, "success", stats)
}
