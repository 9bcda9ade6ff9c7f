package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	config "github.com/prognoza/forecast-platform/configs"
	"github.com/prognoza/forecast-platform/internal/forecast/assembler"
	forecastclient "github.com/prognoza/forecast-platform/internal/forecast/client"
	forecasthttp "github.com/prognoza/forecast-platform/internal/forecast/delivery/http"
	forecastrepo "github.com/prognoza/forecast-platform/internal/forecast/repository"
	forecastcommand "github.com/prognoza/forecast-platform/internal/forecast/usecase/command"
	forecastquery "github.com/prognoza/forecast-platform/internal/forecast/usecase/query"
	inventoryhttp "github.com/prognoza/forecast-platform/internal/inventory/delivery/http"
	inventoryrepo "github.com/prognoza/forecast-platform/internal/inventory/repository"
	organizationhttp "github.com/prognoza/forecast-platform/internal/organization/delivery/http"
	organizationrepo "github.com/prognoza/forecast-platform/internal/organization/repository"
	uploadhttp "github.com/prognoza/forecast-platform/internal/upload/delivery/http"
	userhttp "github.com/prognoza/forecast-platform/internal/user/delivery/http"
	userrepo "github.com/prognoza/forecast-platform/internal/user/repository"
	"github.com/prognoza/forecast-platform/kafka"
	"github.com/prognoza/forecast-platform/pkg/database"
	"github.com/prognoza/forecast-platform/pkg/logger"
	"github.com/prognoza/forecast-platform/pkg/tracing"
)

const serviceName = "forecast-backend"

func main() {
	cfg := config.LoadConfig()

	logger.Init(serviceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", serviceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting forecast backend")

	// Tracing
	tp, err := tracing.InitTracer(serviceName)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(ctx, tp); err != nil {
				logger.Logger.Error().Err(err).Msg("Failed to shut down tracer")
			}
		}()
	}

	// Database
	db, err := database.NewGormConnection(database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Repositories + migrations
	userRepo := userrepo.NewGormUserRepository(db)
	productRepo := inventoryrepo.NewGormProductRepository(db)
	operationRepo := inventoryrepo.NewGormOperationRepository(db)
	orgRepo := organizationrepo.NewGormOrganizationRepository(db)
	locationRepo := organizationrepo.NewGormLocationRepository(db)
	runRepo := forecastrepo.NewGormPredictionRunRepository(db)
	predictionRepo := forecastrepo.NewGormPredictionRepository(db)

	if err := userRepo.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run user migrations")
	}
	if err := productRepo.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run inventory migrations")
	}
	if err := orgRepo.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run organization migrations")
	}
	if err := runRepo.AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run forecast migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	// Kafka (optional)
	var publisher kafka.EventPublisher
	var kafkaPublisher *kafka.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err = kafka.NewPublisher(cfg.KafkaBrokers)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to initialize Kafka publisher, events disabled")
		} else {
			publisher = kafkaPublisher
			defer kafkaPublisher.Close()
		}
	}

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	if len(cfg.KafkaBrokers) > 0 {
		startAuditConsumer(consumerCtx, cfg.KafkaBrokers)
	}

	// Handlers
	userHandler := userhttp.NewUserHandler(userRepo)
	authn := userHandler.Authenticator()

	orgHandler := organizationhttp.NewOrganizationHandler(orgRepo, locationRepo)
	inventoryHandler := inventoryhttp.NewInventoryHandler(productRepo, operationRepo, publisher)
	uploadHandler := uploadhttp.NewUploadHandler(productRepo, operationRepo)

	predictHandler := forecastcommand.NewPredictSalesHandler(
		assembler.NewAssembler(productRepo, operationRepo),
		forecastclient.NewMLClient(cfg.MLServiceURL),
		productRepo,
		runRepo,
		predictionRepo,
		publisher,
	)
	forecastHandler := forecasthttp.NewForecastHandler(
		predictHandler,
		forecastquery.NewGetForecastDataHandler(runRepo, predictionRepo),
		forecastquery.NewGetForecastHistoryHandler(predictionRepo),
	)

	// Router
	router := mux.NewRouter()
	userHandler.RegisterRoutes(router)
	userHandler.RegisterHealthCheck(router, sqlDB)
	orgHandler.RegisterRoutes(router, organizationhttp.Middleware(authn.Middleware), organizationhttp.Middleware(authn.AdminMiddleware))
	inventoryHandler.RegisterRoutes(router, inventoryhttp.Middleware(authn.Middleware))
	uploadHandler.RegisterRoutes(router, uploadhttp.Middleware(authn.Middleware))
	forecastHandler.RegisterRoutes(router, forecasthttp.Middleware(authn.Middleware))

	router.Handle("/metrics", promhttp.Handler())
	userhttp.RegisterSwaggerDocs(router, httpSwagger.WrapHandler)

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: c.Handler(router),
	}

	go func() {
		logger.Logger.Info().
			Str("port", cfg.Port).
			Str("ml_service_url", cfg.MLServiceURL).
			Str("metrics_endpoint", "/metrics").
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info().Msg("Shutting down server...")
	stopConsumer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shut down")
	}
}

// startAuditConsumer logs completed forecasts from the event stream.
func startAuditConsumer(ctx context.Context, brokers []string) {
	consumer, err := kafka.NewConsumer(brokers, "forecast-audit", []string{kafka.TopicForecastCompleted})
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to initialize Kafka consumer, audit log disabled")
		return
	}

	consumer.OnForecastCompleted(func(ctx context.Context, event kafka.ForecastCompletedEvent) error {
		logger.Logger.Info().
			Str("event_id", event.EventID).
			Uint("prediction_run_id", event.PredictionRunID).
			Uint("organization_id", event.OrganizationID).
			Int("days_predicted", event.DaysPredicted).
			Float64("overall_mape", event.OverallMAPE).
			Int("prediction_count", event.PredictionCount).
			Msg("Forecast completed")
		return nil
	})

	if err := consumer.Start(ctx); err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to start Kafka consumer")
	}

	go func() {
		<-ctx.Done()
		consumer.Close()
	}()
}
