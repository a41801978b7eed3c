package usecase_test

import (
	"context"
	"testing"
	"time"

	"tour-marketplace/internal/data/entity"
	"tour-marketplace/internal/dto/request"
	"tour-marketplace/internal/metrics"
	"tour-marketplace/internal/pricing"
	"tour-marketplace/internal/usecase"
	"tour-marketplace/pkg/utils"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func dayAt(offset int) *time.Time {
	d := time.Date(2026, 5, 1+offset, 0, 0, 0, 0, time.UTC)
	return &d
}

func testConfig() *utils.Config {
	return &utils.Config{
		Pricing: utils.PricingConfig{
			MinBasePrice:          decimal.RequireFromString("1.00"),
			DefaultCommissionRate: decimal.RequireFromString("0.10"),
		},
		Booking: utils.BookingConfig{CodeAttempts: 5, DefaultPerPage: 10},
	}
}

type fixture struct {
	store   *store
	svc     *usecase.Service
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, opts ...usecase.Option) *fixture {
	t.Helper()
	s := newStore()
	m := metrics.New(prometheus.NewRegistry())
	opts = append([]usecase.Option{usecase.WithClock(clock), usecase.WithMetrics(m)}, opts...)
	return &fixture{
		store:   s,
		svc:     usecase.NewService(s.repository(), s, testConfig(), zap.NewNop(), opts...),
		metrics: m,
	}
}

// seedTour stores a published open-dates tour with adult/child tickets at
// 100/50 net and a lunch extra at 20 net, all at a 10% commission.
func (f *fixture) seedTour(t *testing.T, groupSize, current int) *entity.TourPackage {
	t.Helper()
	priced, err := pricing.PriceTour(decimal.RequireFromString("100.00"), decimal.RequireFromString("0.10"),
		pricing.RawPrices{"adult": "100.00", "child": "50.00"},
		pricing.RawPrices{"lunch": "20.00"})
	require.NoError(t, err)

	tour := &entity.TourPackage{
		OperatorID:       uuid.New(),
		Title:            "Komodo Island Hopping",
		DurationDays:     2,
		AvailabilityType: entity.AvailabilityOpenDates,
		AvailableFrom:    dayAt(0),
		AvailableUntil:   dayAt(60),
		GroupSize:        groupSize,
		Status:           entity.TourStatusPublished,
		IsActive:         true,
	}
	priced.Apply(tour)
	require.NoError(t, tourRepo{f.store}.Create(context.Background(), tour))

	f.store.mu.Lock()
	f.store.tours[tour.ID].CurrentBookings = current
	f.store.mu.Unlock()
	tour.CurrentBookings = current
	return tour
}

func traveler() utils.Actor {
	return utils.Actor{ID: uuid.New(), Role: utils.RoleTraveler}
}

func bookingRequest(tourID uuid.UUID, tickets map[string]int) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{
		QuoteRequest: request.QuoteRequest{
			TourID:        tourID.String(),
			TravelDate:    "2026-05-04",
			TicketsDetail: tickets,
		},
		ContactName:  "Dewi Lestari",
		ContactEmail: "dewi@example.com",
	}
}

type hookMock struct{ mock.Mock }

func (m *hookMock) OnBookingEvent(ctx context.Context, event entity.BookingEvent) error {
	return m.Called(ctx, event).Error(0)
}

// fixedCodes hands out codes in order and then repeats the last one.
func fixedCodes(codes ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		c := codes[min(i, len(codes)-1)]
		i++
		return c, nil
	}
}
