package main

import (
	"context"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ridewave/dispatch/internal/pkg/config"
	"github.com/ridewave/dispatch/internal/pkg/database"
	"github.com/ridewave/dispatch/internal/pkg/logger"
	"github.com/ridewave/dispatch/internal/pkg/nsq"
	"github.com/ridewave/dispatch/internal/pkg/server"
	pkgws "github.com/ridewave/dispatch/internal/pkg/websocket"
	"github.com/ridewave/dispatch/services/dispatch"
	handlerhttp "github.com/ridewave/dispatch/services/dispatch/handler/http"
	handlerws "github.com/ridewave/dispatch/services/dispatch/handler/websocket"
	"github.com/ridewave/dispatch/services/dispatch/repository"
	"github.com/ridewave/dispatch/services/dispatch/usecase"
)

func main() {
	cfg := config.InitConfig(".env")

	appLogger, err := logger.NewAppLogger(cfg.Logger)
	if err != nil {
		logger.Error("failed to initialize logger", logger.Err(err))
		os.Exit(1)
	}
	logger.InitGlobal(appLogger)

	logger.Info("starting dispatch service",
		logger.String("environment", cfg.App.Environment),
		logger.String("version", cfg.App.Version))

	shutdownMgr := server.NewShutdownManager()

	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", logger.Err(err))
		os.Exit(1)
	}
	shutdownMgr.Register(func(ctx context.Context) error {
		return db.Close()
	})

	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Error("failed to connect to Redis", logger.Err(err))
		os.Exit(1)
	}
	shutdownMgr.Register(func(ctx context.Context) error {
		return redisClient.Close()
	})

	// The broker is optional; without one, lifecycle events are dropped.
	var events dispatch.EventPublisher
	if cfg.NSQ.Address != "" {
		producer, err := nsq.NewProducer(cfg.NSQ.Address)
		if err != nil {
			logger.Error("failed to connect to NSQ", logger.Err(err))
			os.Exit(1)
		}
		shutdownMgr.Register(func(ctx context.Context) error {
			producer.Stop()
			return nil
		})
		events = producer
	} else {
		logger.Warn("NSQ address not configured, lifecycle events disabled")
	}

	registry := pkgws.NewRegistry()
	wsManager := pkgws.NewManager(registry, cfg.JWT)

	driverRepo := repository.NewDriverRepository(cfg, db, redisClient)
	rideRepo := repository.NewRideRepository(cfg, db)
	bookingRepo := repository.NewBookingRepository(cfg, db)

	uc := usecase.NewDispatchUC(cfg, driverRepo, rideRepo, bookingRepo, registry, events)

	waker := usecase.NewWaker(uc)
	waker.Start()
	shutdownMgr.Register(func(ctx context.Context) error {
		waker.Stop()
		return nil
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	wsHandler := handlerws.NewHandler(uc, wsManager)
	httpHandler := handlerhttp.NewHandler(uc, registry)
	handlerhttp.RegisterRoutes(e, cfg, httpHandler, wsHandler)

	srv := server.NewGracefulServer(e, cfg.Server.Port,
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	if err := srv.Start(); err != nil {
		logger.Error("server error", logger.Err(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := shutdownMgr.Shutdown(ctx); err != nil {
		logger.Error("component shutdown failed", logger.Err(err))
	}
}
