package usecase

import (
	"time"

	"tour-marketplace/internal/data/repository"
	"tour-marketplace/internal/ledger"
	"tour-marketplace/internal/metrics"
	"tour-marketplace/pkg/database"
	"tour-marketplace/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type Service struct {
	Tour    TourService
	Booking BookingService
}

type options struct {
	metrics *metrics.Metrics
	hooks   []BookingHook
	codes   ledger.CodeGenerator
	now     func() time.Time
}

type Option func(*options)

// WithMetrics records booking counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithHooks registers post-commit hooks, run in order.
func WithHooks(hooks ...BookingHook) Option {
	return func(o *options) { o.hooks = append(o.hooks, hooks...) }
}

func WithCodeGenerator(gen ledger.CodeGenerator) Option {
	return func(o *options) { o.codes = gen }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func NewService(repo *repository.Repository, tx database.Transactor, config *utils.Config, log *zap.Logger, opts ...Option) *Service {
	o := options{
		codes: ledger.NewCodeGenerator(nil),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = metrics.New(prometheus.NewRegistry())
	}

	return &Service{
		Tour:    NewTourService(repo.Tour, config.Pricing, o.now, log),
		Booking: NewBookingService(repo, tx, config.Booking, o, log),
	}
}
