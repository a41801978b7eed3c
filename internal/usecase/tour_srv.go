package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/internal/data/repository"
	"tour-marketplace/internal/domain"
	"tour-marketplace/internal/dto/request"
	"tour-marketplace/internal/dto/response"
	"tour-marketplace/internal/pricing"
	"tour-marketplace/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TourService interface {
	Create(ctx context.Context, actor utils.Actor, req *request.TourRequest) (*response.TourResponse, error)
	Update(ctx context.Context, tourID string, req *request.TourRequest) (*response.TourResponse, error)
	GetByID(ctx context.Context, tourID string) (*response.TourResponse, error)
	ListPublished(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TourResponse], error)
}

type tourService struct {
	tours  repository.TourRepository
	config utils.PricingConfig
	now    func() time.Time
	log    *zap.Logger
}

func NewTourService(tours repository.TourRepository, config utils.PricingConfig, now func() time.Time, log *zap.Logger) TourService {
	return &tourService{
		tours:  tours,
		config: config,
		now:    now,
		log:    log.With(zap.String("service", "tour")),
	}
}

func (s *tourService) Create(ctx context.Context, actor utils.Actor, req *request.TourRequest) (*response.TourResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Create tour validation failed", zap.Error(err))
		return nil, err
	}

	tour := &entity.TourPackage{
		OperatorID:      actor.ID,
		Status:          entity.TourStatusDraft,
		IsActive:        true,
		CurrentBookings: 0,
	}
	if err := s.apply(tour, req, true); err != nil {
		s.log.Warn("Create tour rejected", zap.Error(err), zap.String("operator_id", actor.ID.String()))
		return nil, err
	}

	if err := s.tours.Create(ctx, tour); err != nil {
		return nil, fmt.Errorf("create tour: %w", err)
	}

	s.log.Info("Tour created",
		zap.String("tour_id", tour.ID.String()),
		zap.String("operator_id", actor.ID.String()),
		zap.String("final_price", tour.FinalPrice.StringFixed(2)),
	)

	resp := response.TourToResponse(tour)
	return &resp, nil
}

func (s *tourService) Update(ctx context.Context, tourID string, req *request.TourRequest) (*response.TourResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Update tour validation failed", zap.Error(err))
		return nil, err
	}

	id, err := parseID("id", tourID)
	if err != nil {
		return nil, err
	}

	tour, err := s.tours.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find tour %s: %w", tourID, err)
	}
	if tour == nil {
		return nil, notFound("tour", tourID)
	}

	if req.GroupSize < tour.CurrentBookings {
		return nil, domain.New(domain.KindValidation,
			fmt.Sprintf("group size cannot be below the %d seats already booked", tour.CurrentBookings), "group_size")
	}

	before := pricing.WindowOf(tour)
	if err := s.apply(tour, req, false); err != nil {
		s.log.Warn("Update tour rejected", zap.Error(err), zap.String("tour_id", tourID))
		return nil, err
	}
	// an unchanged window may already have started; only edits are re-checked
	if !windowEqual(before, pricing.WindowOf(tour)) {
		if err := s.validateWindow(tour); err != nil {
			return nil, err
		}
	}

	ok, err := s.tours.Update(ctx, tour)
	if err != nil {
		return nil, fmt.Errorf("update tour %s: %w", tourID, err)
	}
	if !ok {
		return nil, domain.New(domain.KindValidation, "group size cannot be below current bookings", "group_size")
	}

	s.log.Info("Tour updated",
		zap.String("tour_id", tourID),
		zap.String("final_price", tour.FinalPrice.StringFixed(2)),
	)

	resp := response.TourToResponse(tour)
	return &resp, nil
}

func (s *tourService) GetByID(ctx context.Context, tourID string) (*response.TourResponse, error) {
	id, err := parseID("id", tourID)
	if err != nil {
		return nil, err
	}

	tour, err := s.tours.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find tour %s: %w", tourID, err)
	}
	if tour == nil {
		return nil, notFound("tour", tourID)
	}

	resp := response.TourToResponse(tour)
	return &resp, nil
}

func (s *tourService) ListPublished(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.TourResponse], error) {
	tours, err := s.tours.FindPublished(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list published tours: %w", err)
	}

	total, err := s.tours.CountPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("count published tours: %w", err)
	}

	data := make([]response.TourResponse, 0, len(tours))
	for _, t := range tours {
		data = append(data, response.TourToResponse(t))
	}

	return response.NewPaginatedResponse(data, req.Page, req.Limit(), total), nil
}

// apply copies the request onto tour and re-derives every price. On create
// the availability window is validated as well.
func (s *tourService) apply(tour *entity.TourPackage, req *request.TourRequest, create bool) error {
	base, err := decimal.NewFromString(strings.TrimSpace(string(req.BasePrice)))
	if err != nil {
		return domain.New(domain.KindInvalidPrice, "base price must be a decimal amount", "base_price")
	}
	if base.LessThan(s.config.MinBasePrice) {
		return domain.New(domain.KindInvalidPrice,
			fmt.Sprintf("base price must be at least %s", s.config.MinBasePrice.StringFixed(2)), "base_price")
	}

	rate := s.config.DefaultCommissionRate
	if !create {
		rate = tour.CommissionRate
	}
	if req.CommissionRate != nil {
		rate, err = decimal.NewFromString(strings.TrimSpace(string(*req.CommissionRate)))
		if err != nil {
			return domain.New(domain.KindInvalidPrice, "commission rate must be a decimal", "commission_rate")
		}
	}

	priced, err := pricing.PriceTour(base, rate,
		pricing.RawPrices(req.PriceVariations.Strings()), pricing.RawPrices(req.ExtraServices.Strings()))
	if err != nil {
		return err
	}

	window, err := parseWindow(req)
	if err != nil {
		return err
	}

	tour.Title = req.Title
	tour.Description = req.Description
	tour.Location = req.Location
	tour.Destination = req.Destination
	tour.MeetingPoint = req.MeetingPoint
	tour.DurationDays = req.DurationDays
	tour.GroupSize = req.GroupSize
	if req.Status != "" {
		tour.Status = entity.TourStatus(req.Status)
	}
	if req.IsActive != nil {
		tour.IsActive = *req.IsActive
	}
	priced.Apply(tour)
	window.Apply(tour)

	if create {
		return s.validateWindow(tour)
	}
	return nil
}

func (s *tourService) validateWindow(tour *entity.TourPackage) error {
	normalized, err := pricing.ValidateAvailabilityWindow(pricing.WindowOf(tour), s.now())
	if err != nil {
		return err
	}
	normalized.Apply(tour)
	return nil
}

func parseWindow(req *request.TourRequest) (pricing.Window, error) {
	w := pricing.Window{
		Type:          entity.AvailabilityType(req.AvailabilityType),
		DepartureTime: req.DepartureTime,
	}

	dates := []struct {
		field string
		value *string
		dst   **time.Time
	}{
		{"available_from", req.AvailableFrom, &w.AvailableFrom},
		{"available_until", req.AvailableUntil, &w.AvailableUntil},
		{"departure_date", req.DepartureDate, &w.DepartureDate},
	}
	for _, d := range dates {
		if d.value == nil || *d.value == "" {
			continue
		}
		day, err := domain.ParseDay(*d.value)
		if err != nil {
			return pricing.Window{}, domain.New(domain.KindInvalidAvailability, "dates must use YYYY-MM-DD", d.field)
		}
		*d.dst = &day
	}

	return w, nil
}

func windowEqual(a, b pricing.Window) bool {
	return a.Type == b.Type &&
		sameDay(a.AvailableFrom, b.AvailableFrom) &&
		sameDay(a.AvailableUntil, b.AvailableUntil) &&
		sameDay(a.DepartureDate, b.DepartureDate) &&
		sameString(a.DepartureTime, b.DepartureTime)
}

func sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return domain.Day(*a).Equal(domain.Day(*b))
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
