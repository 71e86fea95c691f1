package main // Entry point package

import (
    "context"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/meshwar/ride-backend/internal/config"
    "github.com/meshwar/ride-backend/internal/database"
    "github.com/meshwar/ride-backend/internal/handler"
    "github.com/meshwar/ride-backend/internal/queue"
    "github.com/meshwar/ride-backend/internal/repository"
    "github.com/meshwar/ride-backend/internal/router"
    "github.com/meshwar/ride-backend/internal/service"
    "github.com/meshwar/ride-backend/internal/sweeper"
)

func main() {
    _ = godotenv.Load() // .env is optional; real deployments inject the environment

    cfg := config.Load()
    trCfg := config.LoadTrackingConfig()
    rlCfg := config.LoadRateLimitConfig()
    cacheCfg := config.LoadCacheConfig()

    log := newLogger(cfg)

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.WithError(err).Fatal("database connection failed")
    }
    defer db.Close()

    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Warn("redis unavailable, rate limiting and response cache disabled")
    }

    // Repositories.
    tripRepo := repository.NewTripRepo(db)
    reservationRepo := repository.NewReservationRepo(db, tripRepo)
    sessionRepo := repository.NewTrackingSessionRepo(db)
    positionRepo := repository.NewPositionRepo(db)

    // Services.
    allocator := service.NewAllocator(reservationRepo, trCfg.AllocateMaxRetries, log)
    tracking := service.NewTracking(tripRepo, sessionRepo, positionRepo, reservationRepo,
        trCfg.MaxAccuracyMeters, trCfg.MaxSpeedMS, trCfg.MinInterval, log)

    // Handlers.
    tripHandler := handler.NewTripHandler(tripRepo)
    reservationHandler := handler.NewReservationHandler(allocator, reservationRepo, log)
    trackingHandler := handler.NewTrackingHandler(tracking, trCfg.RetentionDays)

    e := echo.New()
    e.HideBanner = true
    e.Validator = handler.NewRequestValidator()

    router.RegisterRoutes(e)
    router.RegisterPublic(e, tripHandler, cacheCfg, rdb)
    router.RegisterReservations(e, reservationHandler, cfg.JWTSecret, rlCfg, rdb)
    router.RegisterTracking(e, trackingHandler, cfg.JWTSecret, rlCfg, rdb)

    // Background workers: allocation event consumer and retention sweeper.
    go queue.StartAllocationConsumer(log)
    go sweeper.New(tracking, trCfg.SweepInterval, trCfg.RetentionDays, log).Run(context.Background())

    addr := ":" + cfg.Port
    log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")

    if err := e.Start(addr); err != nil {
        log.WithError(err).Fatal("server stopped")
    }
}

// newLogger configures logrus from LOG_LEVEL and LOG_FORMAT.
func newLogger(cfg config.Config) *logrus.Logger {
    log := logrus.New()
    if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
        log.SetLevel(lvl)
    }
    if cfg.LogFormat == "json" {
        log.SetFormatter(&logrus.JSONFormatter{})
    }
    return log
}
