package adaptor

import (
	"net/http"

	"tour-marketplace/internal/dto/request"
	"tour-marketplace/internal/usecase"
	"tour-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TourHandler struct {
	service  usecase.TourService
	bookings usecase.BookingService
	log      *zap.Logger
}

func NewTourHandler(service usecase.TourService, bookings usecase.BookingService, log *zap.Logger) *TourHandler {
	return &TourHandler{
		service:  service,
		bookings: bookings,
		log:      log.With(zap.String("handler", "tour")),
	}
}

// ListTours handles GET /api/tours (public)
func (h *TourHandler) ListTours(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{}
	req.Page, req.PerPage = utils.NormalizePage(
		utils.ParseInt(query.Get("page"), 1),
		utils.ParseInt(query.Get("per_page"), 10),
		10,
	)

	tours, err := h.service.ListPublished(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list tours")
		return
	}

	utils.ResponseSuccess(w, "success", tours)
}

// GetTour handles GET /api/tours/{id} (public)
func (h *TourHandler) GetTour(w http.ResponseWriter, r *http.Request) {
	tour, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get tour")
		return
	}

	utils.ResponseSuccess(w, "success", tour)
}

// CreateTour handles POST /api/tours (operator)
func (h *TourHandler) CreateTour(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req request.TourRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	tour, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create tour")
		return
	}

	utils.ResponseCreated(w, "Tour created", tour)
}

// UpdateTour handles PUT /api/tours/{id} (operator)
func (h *TourHandler) UpdateTour(w http.ResponseWriter, r *http.Request) {
	var req request.TourRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	tour, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update tour")
		return
	}

	utils.ResponseSuccess(w, "Tour updated", tour)
}

// AdjustCapacity handles POST /api/admin/tours/{id}/capacity (admin)
func (h *TourHandler) AdjustCapacity(w http.ResponseWriter, r *http.Request) {
	var req request.AdjustCapacityRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	capacity, err := h.bookings.AdjustCapacity(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "adjust capacity")
		return
	}

	utils.ResponseSuccess(w, "Capacity adjusted", capacity)
}
