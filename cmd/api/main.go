package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/api/handlers"
	"github.com/zatekoja/livesearch-plp/internal/api/middleware"
	"github.com/zatekoja/livesearch-plp/internal/api/routes"
	"github.com/zatekoja/livesearch-plp/internal/bootstrap"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/observability"
	"github.com/zatekoja/livesearch-plp/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logCloser := observability.InitLoggerWithOptions(cfg.OTEL.ServiceName, cfg.Server.Environment, observability.LogOptions{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	defer logCloser.Close()

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	app, err := bootstrap.New(ctx, cfg, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to assemble storefront")
	}
	defer app.Close()
	app.StartBackground(ctx)

	// Initialize handlers
	listingHandler := handlers.NewListingHandler(app.Mounter, app.Registry, app.Store)
	categoryHandler := handlers.NewCategoryHandler(app.Categories)
	cartHandler := handlers.NewCartHandler(app.Cart)

	var analyticsHandler *handlers.AnalyticsHandler
	if app.Analytics != nil {
		analyticsHandler = handlers.NewAnalyticsHandler(app.Analytics)
	}

	var cacheMiddleware *middleware.CacheMiddleware
	if app.Cache != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(app.Cache)
	}

	router := routes.NewRouter(
		listingHandler,
		categoryHandler,
		cartHandler,
		analyticsHandler,
		cacheMiddleware,
		metrics,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("API server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
