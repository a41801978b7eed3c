package wire

import (
	"context"
	"net/http"
	"time"

	"tour-marketplace/internal/adaptor"
	"tour-marketplace/internal/data/repository"
	"tour-marketplace/internal/metrics"
	"tour-marketplace/internal/usecase"
	"tour-marketplace/pkg/database"
	"tour-marketplace/pkg/middleware"
	"tour-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Infra carries the optional infrastructure. A nil Redis disables
// Idempotency-Key handling; a nil Gatherer hides /metrics.
type Infra struct {
	DB       Pinger
	Redis    redis.Cmdable
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Hooks    []usecase.BookingHook
}

type App struct {
	Router  *chi.Mux
	Service *usecase.Service
	Sweeper *usecase.CompletionSweeper
}

func Wiring(repo *repository.Repository, tx database.Transactor, config *utils.Config, logger *zap.Logger, infra Infra) *App {
	opts := []usecase.Option{usecase.WithHooks(infra.Hooks...)}
	if infra.Metrics != nil {
		opts = append(opts, usecase.WithMetrics(infra.Metrics))
	}

	service := usecase.NewService(repo, tx, config, logger, opts...)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router:  setupRouter(handler, config, logger, infra),
		Service: service,
		Sweeper: usecase.NewCompletionSweeper(service.Booking, config.Booking.SweepInterval, logger),
	}
}

func setupRouter(handler *adaptor.Handler, config *utils.Config, logger *zap.Logger, infra Infra) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))
	r.Use(middleware.Actor(logger))

	idempotent := func(next http.Handler) http.Handler { return next }
	if infra.Redis != nil {
		idempotent = middleware.Idempotency(infra.Redis, config.Redis.IdempotencyTTL, logger)
	}

	wireTour(r, handler.Tour)
	wireBooking(r, handler.Booking, idempotent)

	r.Get("/health", health(infra.DB))
	if infra.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "Database unavailable", nil, nil)
				return
			}
		}
		utils.ResponseSuccess(w, "OK", nil)
	}
}
