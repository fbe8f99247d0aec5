package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/database"
	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/queue"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/router"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.IsProd())
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalw("database connection failed", "error", err)
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db, log); err != nil {
			log.Fatalw("migrations failed", "error", err)
		}
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unavailable, running without cache and rate limiting")
	} else {
		defer rdb.Close()
	}

	evCfg := config.LoadEventsConfig()
	events := openEvents(evCfg, log)
	defer events.Close()
	startConsumer(ctx, evCfg, log)

	orders := service.NewOrderService(repository.NewOrderStore(db), config.LoadOrderPolicy(), events, log)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	tables := repository.NewTableRepo(db)

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens, log),
		Orders:       handler.NewOrderHandler(orders, log),
		Tables:       handler.NewTableHandler(tables, log),
		Menu:         handler.NewMenuHandler(repository.NewMenuRepo(db), log),
		Restaurants:  handler.NewRestaurantHandler(repository.NewRestaurantRepo(db), log),
		Staff:        handler.NewStaffHandler(repository.NewStaffRepo(db), log),
		Reservations: handler.NewReservationHandler(repository.NewReservationRepo(db), tables, log),
		Users:        handler.NewUserHandler(users, tokens, cfg.BcryptCost, log),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.BodyLimit("1M"))

	router.Register(e, h, router.Options{
		JWTSecret: cfg.JWTSecret,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log),
		DB:        db,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Infow("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorw("shutdown failed", "error", err)
	}
}

// openEvents connects the configured broker. A broker that cannot be
// reached degrades to dropping events; orders never wait on it.
func openEvents(cfg config.EventsConfig, log *zap.SugaredLogger) queue.Publisher {
	switch cfg.Driver {
	case config.EventsRabbitMQ:
		p, err := queue.NewRabbitPublisher(cfg.RabbitMQURL, cfg.Exchange)
		if err != nil {
			log.Warnw("rabbitmq unavailable, events disabled", "error", err)
			return queue.NopPublisher{}
		}
		log.Infow("events enabled", "driver", cfg.Driver, "exchange", cfg.Exchange)
		return p
	case config.EventsNATS:
		p, err := queue.NewNATSPublisher(cfg.NATSURL, cfg.Exchange)
		if err != nil {
			log.Warnw("nats unavailable, events disabled", "error", err)
			return queue.NopPublisher{}
		}
		log.Infow("events enabled", "driver", cfg.Driver, "subject_prefix", cfg.Exchange)
		return p
	}
	return queue.NopPublisher{}
}

// startConsumer runs the activity log consumer in the background until ctx
// ends.
func startConsumer(ctx context.Context, cfg config.EventsConfig, log *zap.SugaredLogger) {
	if !cfg.ConsumerEnabled {
		return
	}
	h := queue.ActivityLogger(log.Named("activity"))
	switch cfg.Driver {
	case config.EventsRabbitMQ:
		go queue.ConsumeRabbitMQ(ctx, cfg.RabbitMQURL, cfg.Exchange, h, log)
	case config.EventsNATS:
		go func() {
			if err := queue.ConsumeNATS(ctx, cfg.NATSURL, cfg.Exchange, h, log); err != nil {
				log.Warnw("activity consumer stopped", "error", err)
			}
		}()
	}
}
