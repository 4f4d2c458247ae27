package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/humatwin/BCR/internal/cache"
	"github.com/humatwin/BCR/internal/client"
	"github.com/humatwin/BCR/internal/config"
	"github.com/humatwin/BCR/internal/engine"
	"github.com/humatwin/BCR/internal/metrics"
	"github.com/humatwin/BCR/internal/repository"
	"github.com/humatwin/BCR/internal/scheduler"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting BCR Ranking Worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize document source client
	srcClient := client.NewClient(
		cfg.SourceBaseURL,
		cfg.SourceAPIKey,
		cfg.SourceTimeout,
	)
	log.Info().Str("base_url", cfg.SourceBaseURL).Msg("Document source client initialized")

	// Initialize database connection (optional; rankings work without it)
	var db *repository.Database
	if cfg.DatabaseEnabled {
		dbConfig := repository.Config{
			Host:     cfg.DatabaseHost,
			Port:     strconv.Itoa(cfg.DatabasePort),
			User:     cfg.DatabaseUser,
			Password: cfg.DatabasePassword,
			Database: cfg.DatabaseName,
			SSLMode:  cfg.DatabaseSSLMode,
		}

		var err error
		db, err = repository.NewDatabase(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()
		log.Info().Msg("Database connection established")
	} else {
		log.Info().Msg("Database disabled, snapshots will not be persisted")
	}

	// Initialize the result cache: Redis when reachable, in-process otherwise
	var store cache.Cache
	redisCache, err := cache.NewRedis(ctx, cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis, falling back to in-memory cache")
		store = cache.NewMemory(cfg.CacheTTL)
	} else {
		store = redisCache
		log.Info().Msg("Redis cache connected")
	}
	defer store.Close()

	// Build the ranking engine
	eng := engine.New(srcClient, store, engine.Options{
		FetchConcurrency: cfg.FetchConcurrency,
		UpcomingLimit:    cfg.UpcomingLimit,
	})

	// Start metrics HTTP server
	if cfg.EnableMetrics {
		go startMetricsServer(strconv.Itoa(cfg.MetricsPort))
	}

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	// SIGHUP drops memoized results and recomputes from the source
	hupChan := make(chan os.Signal, 1)
	signal.Notify(hupChan, syscall.SIGHUP)
	go func() {
		for {
			select {
			case <-hupChan:
				log.Info().Msg("Received SIGHUP, clearing result cache")
				if err := eng.ClearCache(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to clear cache")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Create and start scheduler
	sched := scheduler.NewScheduler(cfg, eng, db)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Warm the caches once on startup so first requests hit fresh data
	if cfg.InitialWarmEnabled {
		log.Info().Msg("Running initial ranking computation...")
		if err := sched.WarmRankings(ctx); err != nil {
			log.Error().Err(err).Msg("Initial ranking computation failed, continuing anyway...")
		} else {
			log.Info().Msg("Initial ranking computation completed successfully")
		}
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port string) {
	http.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
