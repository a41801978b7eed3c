package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"tour-marketplace/cmd"
	"tour-marketplace/internal/data/repository"
	"tour-marketplace/internal/metrics"
	"tour-marketplace/internal/notify"
	"tour-marketplace/internal/wire"
	"tour-marketplace/migrations"
	"tour-marketplace/pkg/cache"
	"tour-marketplace/pkg/database"
	"tour-marketplace/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if config.Database.Migrate {
		if err := database.Migrate(ctx, database.DSN(config.Database), migrations.FS, logger); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	infra := wire.Infra{DB: db}
	if config.Metrics.Enabled {
		infra.Metrics = metrics.New(prometheus.DefaultRegisterer)
		infra.Gatherer = prometheus.DefaultGatherer
	} else {
		infra.Metrics = metrics.New(prometheus.NewRegistry())
	}

	if config.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, config.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		infra.Redis = rdb
		logger.Info("Redis connected, Idempotency-Key enabled", zap.String("addr", config.Redis.Addr))
	}

	if config.Kafka.Enabled() {
		publisher := notify.NewKafkaPublisher(config.Kafka, infra.Metrics, logger)
		defer publisher.Close()
		infra.Hooks = append(infra.Hooks, publisher)
		logger.Info("Publishing booking events",
			zap.Strings("brokers", config.Kafka.Brokers),
			zap.String("topic", config.Kafka.Topic),
		)
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, database.NewTxManager(db), config, logger, infra)

	go app.Sweeper.Run(ctx)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}
}
