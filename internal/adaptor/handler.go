package adaptor

import (
	"tour-marketplace/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Tour    *TourHandler
	Booking *BookingHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Tour:    NewTourHandler(service.Tour, service.Booking, log),
		Booking: NewBookingHandler(service.Booking, log),
	}
}
