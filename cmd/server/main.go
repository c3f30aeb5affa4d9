package main // Entry point package

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/logger"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/raffle-tickets/internal/config"     // Internal config loader
	"github.com/iliyamo/raffle-tickets/internal/database"   // MySQL connection and schema
	"github.com/iliyamo/raffle-tickets/internal/handler"    // HTTP handlers
	"github.com/iliyamo/raffle-tickets/internal/middleware" // cache and rate limiting
	"github.com/iliyamo/raffle-tickets/internal/repository" // data access
	"github.com/iliyamo/raffle-tickets/internal/router"     // Internal router setup
	"github.com/iliyamo/raffle-tickets/internal/service"    // sale event publisher
)

func main() {
	defer logger.Init("raffle-server", true, false, io.Discard).Close()

	cfg, err := config.Load() // Load environment config
	if err != nil {
		logger.Fatal(err)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatalf("db: %v", err)
	}
	defer db.Close()
	if cfg.MigrateOnStart {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			logger.Fatalf("db migrate: %v", err)
		}
	}

	// Redis is optional: without it caching and rate limiting are off.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warning("redis unavailable; cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewRaffleCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	var publisher handler.SalePublisher
	if cfg.EventsEnabled {
		publisher = service.NewSalePublisher(cfg.AMQPURL)
	}

	h := handler.NewRaffleHandler(
		repository.NewRaffleRepo(db),
		repository.NewTicketRepo(db),
		publisher,
		cache,
	)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Warningf("%s %s %d %s: %v", v.Method, v.URI, v.Status, v.Latency, v.Error)
				return nil
			}
			logger.Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	router.RegisterRoutes(e, db) // Register application routes
	router.RegisterRaffle(e, h, cache, limiter, cfg.JWTSecret, cfg.AdminRole)

	addr := ":" + cfg.Port
	go func() {
		logger.Infof("listening on %s (env=%s)", addr, cfg.Env) // Print startup info
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
