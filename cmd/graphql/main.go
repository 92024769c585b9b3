package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/api/middleware"
	"github.com/zatekoja/livesearch-plp/internal/bootstrap"
	"github.com/zatekoja/livesearch-plp/internal/graphql/loaders"
	"github.com/zatekoja/livesearch-plp/internal/graphql/resolvers"
	"github.com/zatekoja/livesearch-plp/internal/graphql/server"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/observability"
	"github.com/zatekoja/livesearch-plp/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	serviceName := cfg.OTEL.ServiceName + "-graphql"
	logCloser := observability.InitLoggerWithOptions(serviceName, cfg.Server.Environment, observability.LogOptions{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	defer logCloser.Close()

	log.Info().
		Str("service", serviceName).
		Str("version", cfg.OTEL.ServiceVersion).
		Str("env", cfg.Server.Environment).
		Msg("Starting GraphQL Server")

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, serviceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize metrics")
	}

	app, err := bootstrap.New(ctx, cfg, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to assemble storefront")
	}
	defer app.Close()
	app.StartBackground(ctx)

	resolver := resolvers.NewResolver(app.Mounter, app.Store, app.Categories, app.Cart, app.Analytics)
	schema, err := resolvers.NewSchema(resolver)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build GraphQL schema")
	}

	gql := server.NewHandler(schema, func() *loaders.Loaders {
		return loaders.NewLoaders(app.Categories)
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.GraphQLAddr(),
		Handler:      newMux(gql, metrics, cfg.Server.Environment != "production"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("address", httpServer.Addr).Msg("GraphQL server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down GraphQL server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("GraphQL server stopped")
}

// newMux mounts the GraphQL endpoint behind the shared middleware stack,
// plus health and, outside production, the playground.
func newMux(gql http.Handler, metrics *observability.Metrics, withPlayground bool) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"graphql"}`))
	})

	// Apply middleware: CORS -> Performance -> Logging -> Observability
	mux.Handle("/graphql", middleware.CORSMiddleware(
		middleware.ResponseOptimization(
			middleware.LoggingMiddleware(
				middleware.ObservabilityMiddleware(metrics)(gql),
			),
		),
	))

	if withPlayground {
		mux.Handle("/playground", playground.Handler("PLP GraphQL Playground", "/graphql"))
	}
	return mux
}
