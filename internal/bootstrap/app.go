package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/adapters/cache"
	"github.com/zatekoja/livesearch-plp/internal/adapters/catalog"
	"github.com/zatekoja/livesearch-plp/internal/adapters/database"
	"github.com/zatekoja/livesearch-plp/internal/adapters/events"
	"github.com/zatekoja/livesearch-plp/internal/adapters/search"
	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/application/storefront"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
	"github.com/zatekoja/livesearch-plp/internal/i18n"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/clients/redis"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/observability"
	"github.com/zatekoja/livesearch-plp/pkg/config"
)

const (
	sessionTTL      = 30 * time.Minute
	sessionCapacity = 1000
	warmInterval    = 5 * time.Minute
)

// App holds everything the HTTP and GraphQL servers are built from
type App struct {
	Config  *config.Config
	Metrics *observability.Metrics

	// Cache and EventBus are nil without Redis
	Cache    providers.CacheProvider
	EventBus providers.EventBus

	Backends *Backends
	Mounter  *storefront.Mounter
	Registry *storefront.Registry

	// Store is the configured default store with defaults applied
	Store      *entities.StoreDetails
	Categories *services.CategoryService
	Metadata   providers.AttributeMetadataProvider
	Cart       *services.CartService

	// Analytics is nil unless ANALYTICS_ENABLED is set
	Analytics *services.SearchAnalyticsService

	invalidation *services.CacheInvalidationService
	closers      []func() error
}

// New connects the configured infrastructure and assembles the services.
// Redis and PostgreSQL are optional: failures are logged and the feature
// that needs them is disabled. A selected Typesense backend is required.
func New(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*App, error) {
	app := &App{Config: cfg, Metrics: metrics}

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; caching and catalog events disabled")
	} else {
		app.closers = append(app.closers, redisClient.Close)
		app.Cache = cache.NewRedisAdapter(redisClient)
		app.EventBus = events.NewRedisEventBus(redisClient)
		app.closers = append(app.closers, app.EventBus.Close)
	}

	if cfg.Analytics.Enabled {
		app.Analytics = app.connectAnalytics(ctx, cfg)
	}

	var searcher providers.ProductSearcher
	if cfg.Search.Backend == "typesense" {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("typesense search backend: %w", err)
		}
		if err := tsClient.InitSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to init typesense schema")
		}
		searcher = search.NewTypesenseAdapter(tsClient, cfg.Search.FacetAttributes)
	}

	defaults, err := NewDefaults(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Backends = NewBackends(cfg.Catalog, app.Cache, metrics, searcher)
	app.Mounter = storefront.NewMounter(defaults, app.Backends.Backend, app.Analytics, services.NewFeatureFlags(), cfg.Grouping.MaxParallel)
	app.Registry = storefront.NewRegistry(sessionTTL, sessionCapacity)

	raw := map[string]interface{}{}
	if cfg.Storefront.StoreDetailsFile != "" {
		if raw, err = storefront.LoadStoreDetailsFile(cfg.Storefront.StoreDetailsFile); err != nil {
			app.Close()
			return nil, err
		}
	}
	if app.Store, err = app.Mounter.Prepare(ctx, raw); err != nil {
		app.Close()
		return nil, fmt.Errorf("default store details: %w", err)
	}

	backend, err := app.Backends.Backend(ctx, app.Store)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("default store backend: %w", err)
	}
	app.Categories = backend.Categories
	app.Metadata = backend.Metadata

	var cartProvider providers.CartProvider
	if client := app.Backends.CommerceClient(app.Store); client != nil {
		cartProvider = catalog.NewCartAdapter(client)
	} else {
		log.Warn().Msg("COMMERCE_GRAPHQL_URL is not set; add to cart disabled")
	}
	app.Cart = services.NewCartService(
		cartProvider,
		app.Backends.Refiner(app.Store),
		i18n.Get(app.Store.Config.Locale),
		app.Store.Config.RouteTemplate,
	)

	log.Info().
		Str("store_view", app.Store.StoreViewCode).
		Str("search_backend", cfg.Search.Backend).
		Bool("cache", app.Cache != nil).
		Bool("analytics", app.Analytics != nil).
		Msg("storefront assembled")
	return app, nil
}

func (a *App) connectAnalytics(ctx context.Context, cfg *config.Config) *services.SearchAnalyticsService {
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Warn().Err(err).Msg("postgres unavailable; search analytics disabled")
		return nil
	}
	a.closers = append(a.closers, pgClient.Close)

	adapter := database.NewSearchAnalyticsAdapter(pgClient)
	if err := adapter.EnsureSchema(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to create analytics schema; search analytics disabled")
		return nil
	}
	return services.NewSearchAnalyticsService(adapter)
}

// StartBackground starts catalog event driven cache invalidation and
// periodic cache warming. Both need Redis and stop with ctx.
func (a *App) StartBackground(ctx context.Context) {
	if a.Cache == nil {
		return
	}

	if a.EventBus != nil {
		a.invalidation = services.NewCacheInvalidationService(a.Cache, a.EventBus, a.Categories)
		if err := a.invalidation.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
			a.invalidation = nil
		}
	}

	services.NewCacheWarmingService(a.Categories, a.Metadata).StartPeriodicWarming(ctx, warmInterval)
}

// Close stops background services and closes clients in reverse order
func (a *App) Close() {
	if a.invalidation != nil {
		a.invalidation.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("error closing client")
		}
	}
	a.closers = nil
}
