package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/hordestats/internal/config"
	"github.com/freeeve/hordestats/internal/handler"
	"github.com/freeeve/hordestats/internal/logger"
	"github.com/freeeve/hordestats/internal/ratelimit"
	"github.com/freeeve/hordestats/internal/repository"
	"github.com/freeeve/hordestats/internal/repository/postgres"
	redisrepo "github.com/freeeve/hordestats/internal/repository/redis"
	"github.com/freeeve/hordestats/internal/repository/sqlite"
	"github.com/freeeve/hordestats/internal/service"
	"github.com/freeeve/hordestats/internal/telemetry"
	"github.com/freeeve/hordestats/internal/warfish"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(logger.Options{})
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Dev: cfg.Dev})
	log.Info().
		Str("warfishURL", cfg.WarfishURL).
		Str("history", cfg.HistoryDriver()).
		Bool("sharedRateLimit", cfg.RedisURL != "").
		Msg("Config loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, "hordestats", cfg.OTelEndpoint)
	if err != nil {
		log.Warn().Err(err).Msg("Tracing disabled")
	}

	// Lookup history
	lookups, err := openHistory(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("History store unavailable")
	}
	defer lookups.Close()

	// Inbound rate limiting
	var limiter ratelimit.Limiter
	if cfg.RateLimitPerMinute > 0 {
		if cfg.RedisURL != "" {
			redisClient, err := redisrepo.NewClient(ctx, cfg.RedisURL)
			if err != nil {
				log.Fatal().Err(err).Msg("Redis connection failed")
			}
			defer redisClient.Close()
			limiter = redisrepo.NewRateLimiter(redisClient, cfg.RateLimitPerMinute, time.Minute)
		} else {
			mem := ratelimit.NewMemory(cfg.RateLimitPerMinute, 10*time.Minute)
			go mem.Run(ctx, time.Minute)
			limiter = mem
		}
	}

	// Warfish
	client := warfish.NewClient(cfg.WarfishURL, warfish.Options{
		Timeout:           cfg.WarfishTimeout,
		MaxTries:          cfg.WarfishRetries,
		RequestsPerSecond: cfg.WarfishRPS,
		Burst:             4,
	})
	loader := warfish.NewLoader(client)

	// Services
	wsHub := handler.NewHub()
	statsSvc := service.NewStatsService(loader, lookups)
	refresher := service.NewRefresher(statsSvc, wsHub, wsHub, cfg.WatchInterval)

	// Handlers
	statsHandler := handler.NewStatsHandler(statsSvc, warfish.Links{BaseURL: cfg.WarfishURL})
	watchHandler := handler.NewWatchHandler(wsHub, refresher)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(statsHandler, watchHandler, limiter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WarfishTimeout*time.Duration(cfg.WarfishRetries) + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go refresher.Run(ctx)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Tracing shutdown error")
	}
	log.Info().Msg("Server stopped")
}

func openHistory(ctx context.Context, cfg *config.Config) (repository.LookupRepository, error) {
	switch cfg.HistoryDriver() {
	case "postgres":
		db, err := postgres.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return postgres.NewLookupRepo(db), nil
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath())
		if err != nil {
			return nil, err
		}
		return sqlite.NewLookupRepo(db), nil
	}
	log.Info().Msg("DATABASE_URL not set, lookup history disabled")
	return repository.NoopLookups{}, nil
}
