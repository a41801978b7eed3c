package wire

import (
	"tour-marketplace/internal/adaptor"
	"tour-marketplace/pkg/middleware"

	"github.com/go-chi/chi/v5"
)

func wireTour(r chi.Router, tourHandler *adaptor.TourHandler) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/tours", tourHandler.ListTours)
	r.Get("/api/tours/{id}", tourHandler.GetTour)

	// ==================== OPERATOR ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireActor)

		r.Post("/api/tours", tourHandler.CreateTour)
		r.Put("/api/tours/{id}", tourHandler.UpdateTour)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/tours", func(r chi.Router) {
		r.Use(middleware.RequireActor)

		// POST /api/admin/tours/{id}/capacity - manual current_bookings correction
		r.Post("/{id}/capacity", tourHandler.AdjustCapacity)
	})
}
