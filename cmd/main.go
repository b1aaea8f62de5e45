package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spiceshop-service/internal/events"
	"spiceshop-service/internal/handler"
	"spiceshop-service/internal/model"
	"spiceshop-service/internal/repository"
	"spiceshop-service/internal/server"
	"spiceshop-service/internal/service"
	"spiceshop-service/pkg/config"
	"spiceshop-service/pkg/database"
	"spiceshop-service/pkg/jwtutil"
	"spiceshop-service/pkg/lock"
	"spiceshop-service/pkg/logger"
	"spiceshop-service/prometheus"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting spiceshop service", cfg.LogConfig()...)

	// prices and totals are JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.InitDB(&cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		locker = lock.NewRedisLocker(rdb)
		log.Info("Checkout locks backed by redis", zap.String("addr", cfg.Redis.Addr))
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic, log)
		log.Info("Order events published to kafka", zap.String("topic", cfg.Kafka.OrdersTopic))
	}
	defer publisher.Close()

	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})

	store := repository.NewStore(db)
	authService := service.NewAuthService(store, jwtUtil)

	// The API answers 503 until the database is reachable and prepared
	monitor := database.NewMonitor(db, 5*time.Second, cfg.DB.ConnectTimeout, log, prometheus.SetDBUp)
	monitor.OnFirstConnect(func(ctx context.Context) error {
		if err := database.MigrateModels(db.WithContext(ctx), model.AllModels()...); err != nil {
			return err
		}
		if cfg.Admin.Email == "" {
			return nil
		}
		return authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
	})
	if !monitor.Check(ctx) {
		log.Warn("Starting without a database; API requests answer 503 until it is reachable")
	}
	go monitor.Run(ctx)

	h := handler.New(handler.Services{
		Auth:      authService,
		Carts:     service.NewCartService(store),
		Orders:    service.NewOrderService(store, locker, publisher, cfg.Checkout.LockTTL),
		Catalog:   service.NewCatalogService(store),
		Profiles:  service.NewProfileService(store),
		Admin:     service.NewAdminService(store),
		Analytics: service.NewAnalyticsService(store),
		Readiness: monitor,
	})
	e := server.New(h, authService, monitor)

	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
