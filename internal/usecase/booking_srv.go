package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/internal/data/repository"
	"tour-marketplace/internal/domain"
	"tour-marketplace/internal/dto/request"
	"tour-marketplace/internal/dto/response"
	"tour-marketplace/internal/ledger"
	"tour-marketplace/internal/metrics"
	"tour-marketplace/pkg/database"
	"tour-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	Quote(ctx context.Context, req *request.QuoteRequest) (*response.QuoteResponse, error)
	Create(ctx context.Context, actor utils.Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error)

	GetByID(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	GetByCode(ctx context.Context, code string) (*response.BookingResponse, error)
	Verify(ctx context.Context, code, email string) (*response.VerifyResponse, error)
	History(ctx context.Context, bookingID string) ([]response.StatusHistoryResponse, error)
	Trips(ctx context.Context, actor utils.Actor, status string) (*response.TripsResponse, error)
	Incoming(ctx context.Context, actor utils.Actor, req *request.BookingListRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	Stats(ctx context.Context, actor utils.Actor) (*response.BookingStatsResponse, error)

	ConfirmPayment(ctx context.Context, actor utils.Actor, bookingID string, req *request.ConfirmPaymentRequest) (*response.BookingResponse, error)
	Cancel(ctx context.Context, actor utils.Actor, bookingID string, req *request.CancelBookingRequest) (*response.BookingResponse, error)
	Complete(ctx context.Context, actor utils.Actor, bookingID string) (*response.BookingResponse, error)
	Refund(ctx context.Context, actor utils.Actor, bookingID string, req *request.RefundBookingRequest) (*response.BookingResponse, error)

	// AdjustCapacity is the manual correction path for current_bookings.
	AdjustCapacity(ctx context.Context, tourID string, req *request.AdjustCapacityRequest) (*response.CapacityResponse, error)

	// CompleteDue moves CONFIRMED bookings whose travel date has passed to
	// COMPLETED and reports how many were moved.
	CompleteDue(ctx context.Context, batch int) (int, error)
}

type bookingService struct {
	repo    *repository.Repository
	tx      database.Transactor
	config  utils.BookingConfig
	metrics *metrics.Metrics
	hooks   []BookingHook
	codes   ledger.CodeGenerator
	now     func() time.Time
	log     *zap.Logger
}

func NewBookingService(repo *repository.Repository, tx database.Transactor, config utils.BookingConfig, o options, log *zap.Logger) BookingService {
	if config.CodeAttempts < 1 {
		config.CodeAttempts = ledger.DefaultCodeAttempts
	}
	if config.DefaultPerPage < 1 {
		config.DefaultPerPage = 10
	}
	return &bookingService{
		repo:    repo,
		tx:      tx,
		config:  config,
		metrics: o.metrics,
		hooks:   o.hooks,
		codes:   o.codes,
		now:     o.now,
		log:     log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) today() time.Time {
	return domain.Day(s.now())
}

func (s *bookingService) Quote(ctx context.Context, req *request.QuoteRequest) (*response.QuoteResponse, error) {
	_, quote, err := s.quote(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := response.QuoteToResponse(quote)
	return &resp, nil
}

func (s *bookingService) quote(ctx context.Context, req *request.QuoteRequest) (*entity.TourPackage, *ledger.Quote, error) {
	if err := validate(req); err != nil {
		return nil, nil, err
	}

	tourID, err := parseID("tour_id", req.TourID)
	if err != nil {
		return nil, nil, err
	}
	travelDate, err := domain.ParseDay(req.TravelDate)
	if err != nil {
		return nil, nil, domain.New(domain.KindValidation, "travel date must use YYYY-MM-DD", "travel_date")
	}

	tour, err := s.repo.Tour.FindByID(ctx, tourID)
	if err != nil {
		return nil, nil, fmt.Errorf("find tour %s: %w", req.TourID, err)
	}
	if tour == nil {
		return nil, nil, notFound("tour", req.TourID)
	}

	quote, err := ledger.QuoteBooking(tour, req.TicketsDetail, req.SelectedExtras, travelDate, s.today())
	if err != nil {
		s.reject(err)
		return nil, nil, err
	}

	return tour, quote, nil
}

func (s *bookingService) Create(ctx context.Context, actor utils.Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if err := validate(req); err != nil {
		s.log.Warn("Create booking validation failed", zap.Error(err))
		return nil, err
	}

	tour, quote, err := s.quote(ctx, &req.QuoteRequest)
	if err != nil {
		s.log.Warn("Booking request rejected", zap.Error(err), zap.String("tour_id", req.TourID))
		return nil, err
	}
	travelDate, _ := domain.ParseDay(req.TravelDate)

	booking := &entity.Booking{
		TourPackageID:    tour.ID,
		TravelerID:       actor.ID,
		TravelDate:       travelDate,
		TicketsDetail:    quote.TicketsDetail,
		TicketsPrices:    quote.TicketsPrices,
		SelectedExtras:   quote.SelectedExtras,
		ExtrasPrices:     quote.ExtrasPrices,
		SubtotalTickets:  quote.SubtotalTickets,
		SubtotalExtras:   quote.SubtotalExtras,
		TotalAmount:      quote.TotalAmount,
		CommissionAmount: quote.CommissionAmount,
		OperatorAmount:   quote.OperatorAmount,
		CommissionRate:   quote.CommissionRate,
		ContactName:      strings.TrimSpace(req.ContactName),
		ContactEmail:     strings.TrimSpace(req.ContactEmail),
		ContactPhone:     strings.TrimSpace(req.ContactPhone),
		SpecialRequests:  req.SpecialRequests,
		Status:           entity.BookingStatusPending,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := ledger.ClaimCode(ctx, s.codes, s.config.CodeAttempts, func(ctx context.Context, code string) (bool, error) {
			booking.BookingCode = code
			ok, err := s.repo.Booking.CreateWithCode(ctx, booking)
			if err == nil && !ok {
				s.metrics.CodeCollisions.Inc()
			}
			return ok, err
		})
		if err != nil {
			return err
		}

		_, ok, err := s.repo.Tour.IncrementBookings(ctx, tour.ID, quote.TotalPeople)
		if err != nil {
			return err
		}
		if !ok {
			return s.capacityConflict(ctx, tour.ID, quote.TotalPeople)
		}
		return nil
	})
	if err != nil {
		s.reject(err)
		if errors.Is(err, domain.ErrCodeSpaceExhausted) {
			s.log.Error("Booking code space exhausted", zap.Error(err), zap.String("tour_id", tour.ID.String()))
		} else {
			s.log.Warn("Create booking failed", zap.Error(err), zap.String("tour_id", tour.ID.String()))
		}
		return nil, fmt.Errorf("create booking for tour %s: %w", tour.ID.String(), err)
	}

	s.metrics.BookingsCreated.Inc()
	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("booking_code", booking.BookingCode),
		zap.String("tour_id", tour.ID.String()),
		zap.String("traveler_id", actor.ID.String()),
		zap.Int("people", quote.TotalPeople),
		zap.String("total_amount", booking.TotalAmount.StringFixed(2)),
	)

	runHooks(ctx, s.hooks, entity.BookingEvent{
		Type:       entity.BookingEventCreated,
		Booking:    booking,
		ToStatus:   booking.Status,
		ActorID:    actorID(actor),
		OccurredAt: s.now(),
	}, s.log)

	resp := response.BookingToResponse(booking, s.today())
	return &resp, nil
}

// capacityConflict builds the error for a rejected increment from a fresh
// read of the tour.
func (s *bookingService) capacityConflict(ctx context.Context, tourID uuid.UUID, requested int) error {
	tour, err := s.repo.Tour.FindByID(ctx, tourID)
	if err != nil {
		return err
	}
	if tour == nil {
		return notFound("tour", tourID.String())
	}
	return ledger.CapacityExceeded(tour.AvailableSlots(), requested)
}

func (s *bookingService) GetByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.find(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking, s.today())
	return &resp, nil
}

func (s *bookingService) GetByCode(ctx context.Context, code string) (*response.BookingResponse, error) {
	if !ledger.IsValidCode(strings.ToUpper(code)) {
		return nil, domain.New(domain.KindValidation, "booking code must be 8 letters or digits", "code")
	}

	booking, err := s.repo.Booking.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("find booking by code %s: %w", code, err)
	}
	if booking == nil {
		return nil, notFound("booking", strings.ToUpper(code))
	}

	resp := response.BookingToResponse(booking, s.today())
	return &resp, nil
}

func (s *bookingService) Verify(ctx context.Context, code, email string) (*response.VerifyResponse, error) {
	var fields []string
	if !ledger.IsValidCode(strings.ToUpper(code)) {
		fields = append(fields, "code")
	}
	if strings.TrimSpace(email) == "" {
		fields = append(fields, "email")
	}
	if len(fields) > 0 {
		return nil, domain.New(domain.KindValidation, "a valid booking code and contact email are required", fields...)
	}

	booking, err := s.repo.Booking.FindByCodeAndEmail(ctx, code, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("verify booking %s: %w", code, err)
	}
	if booking == nil {
		// same answer for unknown code and wrong email
		return nil, notFound("booking", strings.ToUpper(code))
	}

	resp := response.BookingToVerifyResponse(booking)
	return &resp, nil
}

func (s *bookingService) History(ctx context.Context, bookingID string) ([]response.StatusHistoryResponse, error) {
	booking, err := s.find(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.StatusHistory.FindByBookingID(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("list history for booking %s: %w", bookingID, err)
	}

	return response.HistoryToResponse(entries), nil
}

// Trips splits a traveler's bookings into upcoming (still active, travel date
// not passed) and past (everything else).
func (s *bookingService) Trips(ctx context.Context, actor utils.Actor, status string) (*response.TripsResponse, error) {
	filter := repository.BookingFilter{TravelerID: &actor.ID}
	if status != "" {
		st, err := parseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Statuses = []entity.BookingStatus{st}
	}

	total, err := s.repo.Booking.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count trips for traveler %s: %w", actor.ID.String(), err)
	}
	bookings, err := s.repo.Booking.FindAll(ctx, filter, int(total), 0)
	if err != nil {
		return nil, fmt.Errorf("list trips for traveler %s: %w", actor.ID.String(), err)
	}

	today := s.today()
	var upcoming, past []*entity.Booking
	for _, b := range bookings {
		if b.IsActive() && !b.TravelDate.Before(today) {
			upcoming = append(upcoming, b)
		} else {
			past = append(past, b)
		}
	}
	// most recent past trip first
	for i, j := 0, len(past)-1; i < j; i, j = i+1, j-1 {
		past[i], past[j] = past[j], past[i]
	}

	return &response.TripsResponse{
		UpcomingTrips: response.BookingsToResponse(upcoming, today),
		PastTrips:     response.BookingsToResponse(past, today),
		TotalTrips:    len(bookings),
	}, nil
}

// Incoming lists bookings on the operator's tours, PENDING and CONFIRMED
// unless a status is given.
func (s *bookingService) Incoming(ctx context.Context, actor utils.Actor, req *request.BookingListRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	req.Page, req.PerPage = utils.NormalizePage(req.Page, req.PerPage, s.config.DefaultPerPage)
	if err := validate(req); err != nil {
		return nil, err
	}

	filter := repository.BookingFilter{
		OperatorID: &actor.ID,
		Statuses:   []entity.BookingStatus{entity.BookingStatusPending, entity.BookingStatusConfirmed},
	}
	if req.Status != "" {
		filter.Statuses = []entity.BookingStatus{entity.BookingStatus(req.Status)}
	}

	bookings, err := s.repo.Booking.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list incoming bookings for operator %s: %w", actor.ID.String(), err)
	}
	total, err := s.repo.Booking.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count incoming bookings for operator %s: %w", actor.ID.String(), err)
	}

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings, s.today()), req.Page, req.Limit(), total), nil
}

// Stats scopes by role: travelers see their own bookings, operators the
// bookings on their tours, admins everything.
func (s *bookingService) Stats(ctx context.Context, actor utils.Actor) (*response.BookingStatsResponse, error) {
	var filter repository.BookingFilter
	revenueView := true
	switch actor.Role {
	case utils.RoleAdmin:
	case utils.RoleOperator:
		filter.OperatorID = &actor.ID
	default:
		filter.TravelerID = &actor.ID
		revenueView = false
	}

	stats, err := s.repo.Booking.Stats(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("booking stats for %s: %w", actor.ID.String(), err)
	}

	resp := response.StatsToResponse(stats, revenueView)
	return &resp, nil
}

func (s *bookingService) ConfirmPayment(ctx context.Context, actor utils.Actor, bookingID string, req *request.ConfirmPaymentRequest) (*response.BookingResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	booking, err := s.transition(ctx, actorID(actor), bookingID, entity.BookingStatusConfirmed, "payment "+req.PaymentID,
		func(b *entity.Booking, now time.Time) error {
			paymentID, method := req.PaymentID, req.PaymentMethod
			b.PaymentID, b.PaymentMethod, b.PaidAt = &paymentID, &method, &now
			return nil
		})
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking, s.today())
	return &resp, nil
}

func (s *bookingService) Cancel(ctx context.Context, actor utils.Actor, bookingID string, req *request.CancelBookingRequest) (*response.BookingResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	booking, err := s.transition(ctx, actorID(actor), bookingID, entity.BookingStatusCancelled, req.Reason,
		func(b *entity.Booking, now time.Time) error {
			if err := ledger.CheckCancellable(b, now); err != nil {
				return err
			}
			reason := req.Reason
			b.CancelledAt, b.CancellationReason = &now, &reason
			return nil
		})
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking, s.today())
	return &resp, nil
}

func (s *bookingService) Complete(ctx context.Context, actor utils.Actor, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.transition(ctx, actorID(actor), bookingID, entity.BookingStatusCompleted, "", nil)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking, s.today())
	return &resp, nil
}

func (s *bookingService) Refund(ctx context.Context, actor utils.Actor, bookingID string, req *request.RefundBookingRequest) (*response.BookingResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	booking, err := s.transition(ctx, actorID(actor), bookingID, entity.BookingStatusRefunded, req.Notes, nil)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking, s.today())
	return &resp, nil
}

func (s *bookingService) AdjustCapacity(ctx context.Context, tourID string, req *request.AdjustCapacityRequest) (*response.CapacityResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	id, err := parseID("id", tourID)
	if err != nil {
		return nil, err
	}

	var ok bool
	if req.Delta > 0 {
		_, ok, err = s.repo.Tour.IncrementBookings(ctx, id, req.Delta)
	} else {
		_, ok, err = s.repo.Tour.DecrementBookings(ctx, id, -req.Delta)
	}
	if err != nil {
		return nil, fmt.Errorf("adjust capacity of tour %s: %w", tourID, err)
	}

	tour, err := s.repo.Tour.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find tour %s: %w", tourID, err)
	}
	if tour == nil {
		return nil, notFound("tour", tourID)
	}

	if !ok {
		var conflict error
		if req.Delta > 0 {
			conflict = ledger.CapacityExceeded(tour.AvailableSlots(), req.Delta)
		} else {
			conflict = ledger.NegativeCapacity(tour.CurrentBookings, -req.Delta)
		}
		s.reject(conflict)
		s.log.Warn("Capacity adjustment rejected", zap.Error(conflict), zap.String("tour_id", tourID), zap.Int("delta", req.Delta))
		return nil, conflict
	}

	s.log.Info("Capacity adjusted",
		zap.String("tour_id", tourID),
		zap.Int("delta", req.Delta),
		zap.Int("current_bookings", tour.CurrentBookings),
	)

	resp := response.CapacityToResponse(tour)
	return &resp, nil
}

func (s *bookingService) CompleteDue(ctx context.Context, batch int) (int, error) {
	due, err := s.repo.Booking.FindConfirmedBefore(ctx, s.today(), batch)
	if err != nil {
		return 0, fmt.Errorf("find bookings due for completion: %w", err)
	}

	completed := 0
	for _, b := range due {
		_, err := s.transition(ctx, nil, b.ID.String(), entity.BookingStatusCompleted, "travel date passed", nil)
		if err != nil {
			// a concurrent transition got there first
			if errors.Is(err, domain.ErrInvalidTransition) {
				continue
			}
			return completed, err
		}
		completed++
	}

	s.metrics.SweptBookings.Add(float64(completed))
	return completed, nil
}

// transition moves a booking to status to. The status write is conditional
// on the status read here, and the history row plus any capacity release
// commit with it.
func (s *bookingService) transition(ctx context.Context, actor *uuid.UUID, bookingID string, to entity.BookingStatus, notes string, mutate func(b *entity.Booking, now time.Time) error) (*entity.Booking, error) {
	booking, err := s.find(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	from := booking.Status
	if err := ledger.CheckTransition(from, to); err != nil {
		s.reject(err)
		s.log.Warn("Booking transition rejected", zap.Error(err), zap.String("booking_code", booking.BookingCode))
		return nil, err
	}

	now := s.now()
	if mutate != nil {
		if err := mutate(booking, now); err != nil {
			s.reject(err)
			s.log.Warn("Booking transition rejected", zap.Error(err), zap.String("booking_code", booking.BookingCode))
			return nil, err
		}
	}
	booking.Status = to

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.repo.Booking.UpdateStatus(ctx, booking, from)
		if err != nil {
			return err
		}
		if !ok {
			return domain.New(domain.KindInvalidTransition,
				fmt.Sprintf("booking %s is no longer %s", booking.BookingCode, from), "status")
		}

		if err := s.repo.StatusHistory.Append(ctx, &entity.BookingStatusHistory{
			BookingID:  booking.ID,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  actor,
			Notes:      notes,
		}); err != nil {
			return err
		}

		if ledger.ReleasesCapacity(from, to) {
			people := booking.TotalPeople()
			_, ok, err := s.repo.Tour.DecrementBookings(ctx, booking.TourPackageID, people)
			if err != nil {
				return err
			}
			if !ok {
				tour, err := s.repo.Tour.FindByID(ctx, booking.TourPackageID)
				if err != nil {
					return err
				}
				if tour == nil {
					return notFound("tour", booking.TourPackageID.String())
				}
				return ledger.NegativeCapacity(tour.CurrentBookings, people)
			}
		}
		return nil
	})
	if err != nil {
		s.reject(err)
		s.log.Warn("Booking transition failed",
			zap.Error(err),
			zap.String("booking_code", booking.BookingCode),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return nil, fmt.Errorf("%s booking %s: %w", strings.ToLower(string(to)), booking.BookingCode, err)
	}

	s.metrics.BookingTransitions.WithLabelValues(string(from), string(to)).Inc()
	s.log.Info("Booking status changed",
		zap.String("booking_code", booking.BookingCode),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	runHooks(ctx, s.hooks, entity.BookingEvent{
		Type:       entity.BookingEventStatusChanged,
		Booking:    booking,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actor,
		OccurredAt: now,
	}, s.log)

	return booking, nil
}

func (s *bookingService) find(ctx context.Context, bookingID string) (*entity.Booking, error) {
	id, err := parseID("id", bookingID)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, notFound("booking", bookingID)
	}
	return booking, nil
}

// reject counts ledger rejections by kind. Infrastructure errors carry no
// kind and are not counted.
func (s *bookingService) reject(err error) {
	if kind := domain.KindOf(err); kind != "" {
		s.metrics.BookingRejections.WithLabelValues(string(kind)).Inc()
	}
}

func parseStatus(status string) (entity.BookingStatus, error) {
	st := entity.BookingStatus(strings.ToUpper(status))
	switch st {
	case entity.BookingStatusPending, entity.BookingStatusConfirmed, entity.BookingStatusCancelled,
		entity.BookingStatusCompleted, entity.BookingStatusRefunded:
		return st, nil
	}
	return "", domain.New(domain.KindValidation, "unknown booking status", "status")
}

func actorID(actor utils.Actor) *uuid.UUID {
	if actor.ID == uuid.Nil {
		return nil
	}
	id := actor.ID
	return &id
}
