package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/adapters/events"
	"github.com/zatekoja/livesearch-plp/internal/adapters/search"
	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/application/storefront"
	"github.com/zatekoja/livesearch-plp/internal/bootstrap"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/clients/redis"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/observability"
	"github.com/zatekoja/livesearch-plp/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	var pageSize int
	flag.BoolVar(&reset, "reset", false, "delete the Typesense products collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.IntVar(&pageSize, "page-size", 100, "products requested per catalog page")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logCloser := observability.InitLoggerWithOptions(cfg.OTEL.ServiceName+"-indexer", cfg.Server.Environment, observability.LogOptions{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
	})
	defer logCloser.Close()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Err(err).Str("interval", intervalValue).Msg("invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, reset, pageSize); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("next_run_in", interval).Msg("reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, reset bool, pageSize int) error {
	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Info().Str("collection", tsClient.Collection()).Msg("deleting products collection")
		if _, err := tsClient.Client().Collection(tsClient.Collection()).Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to delete collection")
		}
	}
	if err := tsClient.InitSchema(ctx); err != nil {
		return err
	}

	defaults, err := bootstrap.NewDefaults(cfg)
	if err != nil {
		return err
	}
	raw := map[string]interface{}{}
	if cfg.Storefront.StoreDetailsFile != "" {
		if raw, err = storefront.LoadStoreDetailsFile(cfg.Storefront.StoreDetailsFile); err != nil {
			return err
		}
	}
	store, err := storefront.ValidateStoreDetails(ctx, raw)
	if err != nil {
		return err
	}
	storefront.ApplyDefaults(store, defaults)

	// Always read from the catalog service, whatever SEARCH_BACKEND says
	backends := bootstrap.NewBackends(cfg.Catalog, nil, nil, nil)
	backend, err := backends.Backend(ctx, store)
	if err != nil {
		return err
	}

	var bus providers.EventBus
	if redisClient, err := redis.NewClient(&cfg.Redis); err != nil {
		log.Warn().Err(err).Msg("redis unavailable; catalog event will not be published")
	} else {
		bus = events.NewRedisEventBus(redisClient)
		defer redisClient.Close()
		defer bus.Close()
	}

	index := search.NewTypesenseAdapter(tsClient, cfg.Search.FacetAttributes)
	svc := services.NewCatalogIndexService(backend.Searcher, backend.Categories, index, bus, store.StoreViewCode).
		WithPageSize(pageSize)

	start := time.Now()
	report, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	log.Info().
		Int("categories", report.Categories).
		Int("collected", report.Collected).
		Int("indexed", report.Indexed).
		Strs("failed_categories", report.Failed).
		Dur("took", time.Since(start)).
		Msg("catalog indexed")
	return nil
}
