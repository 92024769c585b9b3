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

	"github.com/zatekoja/livesearch-plp/internal/adapters/events"
	"github.com/zatekoja/livesearch-plp/internal/api/handlers"
	"github.com/zatekoja/livesearch-plp/internal/api/middleware"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/clients/redis"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/observability"
	"github.com/zatekoja/livesearch-plp/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logCloser := observability.InitLoggerWithOptions(cfg.OTEL.ServiceName+"-stream", cfg.Server.Environment, observability.LogOptions{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	defer logCloser.Close()

	// Redis is required: it is the only source of catalog events
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Redis client")
	}
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)
	streamHandler := handlers.NewCatalogStreamHandler(eventBus)

	server := &http.Server{
		Addr:        cfg.Server.StreamAddr(),
		Handler:     newMux(streamHandler),
		ReadTimeout: 30 * time.Second,
		// streams stay open, so writes never time out
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("catalog stream server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("catalog stream server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("catalog stream server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}
	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("error closing event bus")
	}

	log.Info().Msg("catalog stream server stopped")
}

// newMux routes the stream endpoints. Responses are not compressed or
// buffered so events reach clients as they are flushed.
func newMux(h *handlers.CatalogStreamHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"stream"}`))
	})

	mux.HandleFunc("GET /api/stream/catalog", h.StreamCatalogUpdates)
	mux.HandleFunc("GET /api/stream/stores/{storeView}", h.StreamStoreUpdates)
	mux.HandleFunc("GET /api/stream/stats", h.Stats)

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(handler)
	return handler
}
