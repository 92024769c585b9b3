package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/adapters/search"
	"github.com/zatekoja/livesearch-plp/internal/application/storefront"
	"github.com/zatekoja/livesearch-plp/internal/bootstrap"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
	"github.com/zatekoja/livesearch-plp/internal/evaluation"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/observability"
	"github.com/zatekoja/livesearch-plp/pkg/config"
)

func main() {
	var goldenPath, backend string
	var k int
	flag.StringVar(&goldenPath, "golden", "config/golden_queries.yaml", "golden query set (YAML or JSON)")
	flag.StringVar(&backend, "backend", "", "search backend to score: catalog or typesense (default SEARCH_BACKEND)")
	flag.IntVar(&k, "k", evaluation.DefaultK, "metric cut-off")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logCloser := observability.InitLoggerWithOptions(cfg.OTEL.ServiceName+"-evaluate", cfg.Server.Environment, observability.LogOptions{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
	})
	defer logCloser.Close()

	if backend == "" {
		backend = cfg.Search.Backend
	}

	queries, err := evaluation.LoadGoldenQueries(goldenPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load golden queries")
	}
	if err := evaluation.ValidateGoldenQueries(queries); err != nil {
		log.Fatal().Err(err).Msg("invalid golden queries")
	}

	ctx := log.Logger.WithContext(context.Background())
	searcher, err := newSearcher(ctx, cfg, backend)
	if err != nil {
		log.Fatal().Err(err).Str("backend", backend).Msg("failed to set up search backend")
	}

	summary, err := evaluation.NewRunner(searcher, k).Run(ctx, queries)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluation failed")
	}

	log.Info().
		Str("backend", backend).
		Int("queries", summary.TotalQueries).
		Int("failed", summary.FailedQueries).
		Float64("recall", summary.AvgRecallAtK).
		Float64("mrr", summary.AvgMRRAtK).
		Float64("ndcg", summary.AvgNDCGAtK).
		Msg("evaluation complete")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		log.Fatal().Err(err).Msg("failed to write summary")
	}
}

// newSearcher builds the backend under evaluation. The catalog searcher is
// scoped to the configured store.
func newSearcher(ctx context.Context, cfg *config.Config, backend string) (providers.ProductSearcher, error) {
	if backend == "typesense" {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			return nil, err
		}
		return search.NewTypesenseAdapter(tsClient, cfg.Search.FacetAttributes), nil
	}

	defaults, err := bootstrap.NewDefaults(cfg)
	if err != nil {
		return nil, err
	}
	raw := map[string]interface{}{}
	if cfg.Storefront.StoreDetailsFile != "" {
		if raw, err = storefront.LoadStoreDetailsFile(cfg.Storefront.StoreDetailsFile); err != nil {
			return nil, err
		}
	}
	store, err := storefront.ValidateStoreDetails(ctx, raw)
	if err != nil {
		return nil, err
	}
	storefront.ApplyDefaults(store, defaults)

	b, err := bootstrap.NewBackends(cfg.Catalog, nil, nil, nil).Backend(ctx, store)
	if err != nil {
		return nil, err
	}
	return b.Searcher, nil
}
