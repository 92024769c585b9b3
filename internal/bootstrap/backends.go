// Package bootstrap assembles clients, adapters and services from
// configuration for the command binaries.
package bootstrap

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/adapters/cache"
	"github.com/zatekoja/livesearch-plp/internal/adapters/catalog"
	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/application/storefront"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/clients/commerce"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/observability"
	"github.com/zatekoja/livesearch-plp/pkg/config"
	apperrors "github.com/zatekoja/livesearch-plp/pkg/errors"
	"github.com/zatekoja/livesearch-plp/pkg/retry"
)

// maxMemoizedBackends bounds how many distinct stores keep their adapters
// and category forest in memory.
const maxMemoizedBackends = 64

// Backends builds the catalog adapters of a store and reuses them for
// later mounts of the same store.
type Backends struct {
	catalog  config.CatalogConfig
	cache    providers.CacheProvider
	metrics  *observability.Metrics
	searcher providers.ProductSearcher

	mu    sync.Mutex
	byKey map[string]*storefront.Backend
}

// NewBackends creates a backend factory. cache, metrics and searcher may be
// nil; a nil searcher searches through the store's catalog service.
func NewBackends(cfg config.CatalogConfig, cacheProvider providers.CacheProvider, metrics *observability.Metrics, searcher providers.ProductSearcher) *Backends {
	return &Backends{
		catalog:  cfg,
		cache:    cacheProvider,
		metrics:  metrics,
		searcher: searcher,
		byKey:    map[string]*storefront.Backend{},
	}
}

// CategoryQuery returns the categories request configured for every store
func CategoryQuery(cfg config.CatalogConfig) entities.CategoryQuery {
	return entities.CategoryQuery{
		IDs:        cfg.CategoryRootIDs,
		Roles:      cfg.CategoryRoles,
		Depth:      cfg.CategoryDepth,
		StartLevel: cfg.CategoryStartLvl,
	}
}

// CatalogClient returns a catalog service client for store
func (b *Backends) CatalogClient(store *entities.StoreDetails) *commerce.Client {
	return commerce.NewClient(commerce.Config{
		Endpoint: store.APIURL,
		Headers:  catalog.CatalogHeaders(store),
		Timeout:  b.catalog.Timeout,
		Retry:    retry.RequestConfig(),
	})
}

// CommerceClient returns a client for the store's commerce endpoint, or nil
// when the store has none. Cart mutations are never retried.
func (b *Backends) CommerceClient(store *entities.StoreDetails) *commerce.Client {
	if store.CommerceURL == "" {
		return nil
	}
	return commerce.NewClient(commerce.Config{
		Endpoint: store.CommerceURL,
		Headers:  catalog.CommerceHeaders(store),
		Timeout:  b.catalog.Timeout,
	})
}

// Backend implements storefront.BackendFactory
func (b *Backends) Backend(ctx context.Context, store *entities.StoreDetails) (*storefront.Backend, error) {
	if store == nil || store.APIURL == "" {
		return nil, apperrors.NewValidationError("store details have no catalog API URL")
	}

	key := backendKey(store)
	b.mu.Lock()
	defer b.mu.Unlock()
	if backend, ok := b.byKey[key]; ok {
		return backend, nil
	}

	adapter := catalog.NewCatalogAdapter(b.CatalogClient(store))
	var source cache.CatalogSource = adapter
	if b.cache != nil {
		source = cache.NewCachedCatalogAdapter(adapter, b.cache, b.metrics, store.StoreViewCode)
	}

	var searcher providers.ProductSearcher = adapter
	if b.searcher != nil {
		searcher = b.searcher
	}

	backend := &storefront.Backend{
		Searcher:   searcher,
		Categories: services.NewCategoryService(source, CategoryQuery(b.catalog)),
		Metadata:   source,
	}
	if len(b.byKey) < maxMemoizedBackends {
		b.byKey[key] = backend
	} else {
		log.Ctx(ctx).Warn().Str("store_view", store.StoreViewCode).Msg("backend cache full; adapters built for this mount only")
	}
	return backend, nil
}

// Refiner returns the product refiner of a store's catalog service
func (b *Backends) Refiner(store *entities.StoreDetails) providers.ProductRefiner {
	return catalog.NewCatalogAdapter(b.CatalogClient(store))
}

func backendKey(store *entities.StoreDetails) string {
	return strings.Join([]string{
		store.APIURL,
		store.APIKey,
		store.EnvironmentID,
		store.WebsiteCode,
		store.StoreCode,
		store.StoreViewCode,
		store.Context.CustomerGroup,
	}, "|")
}

// NewDefaults converts configuration into store detail defaults, reading
// the grouping lookup table when one is configured.
func NewDefaults(cfg *config.Config) (storefront.Defaults, error) {
	lookup, err := storefront.LoadGroupLookup(cfg.Grouping.LookupFile)
	if err != nil {
		return storefront.Defaults{}, err
	}
	return storefront.Defaults{
		APIURL:            cfg.Catalog.APIURL,
		TestAPIURL:        cfg.Catalog.TestAPIURL,
		SandboxAPIKey:     cfg.Catalog.SandboxAPIKey,
		CommerceURL:       cfg.Catalog.CommerceURL,
		EnvironmentID:     cfg.Catalog.EnvironmentID,
		WebsiteCode:       cfg.Catalog.WebsiteCode,
		StoreCode:         cfg.Catalog.StoreCode,
		StoreViewCode:     cfg.Catalog.StoreViewCode,
		CustomerGroup:     cfg.Catalog.CustomerGroup,
		PageSize:          cfg.Storefront.PageSize,
		PageSizeOptions:   cfg.Storefront.PageSizeOptions,
		MinQueryLength:    cfg.Storefront.MinQueryLength,
		DisplayOutOfStock: cfg.Storefront.DisplayOutOfStock,
		AllowAllProducts:  cfg.Storefront.AllowAllProducts,
		Locale:            cfg.Storefront.Locale,
		SearchQueryParam:  cfg.Storefront.SearchQueryParam,
		RouteTemplate:     cfg.Storefront.RouteTemplate,
		CurrencySymbol:    cfg.Storefront.CurrencySymbol,
		CurrencyRate:      cfg.Storefront.CurrencyRate,
		Grouping: entities.GroupConfig{
			GroupBy: cfg.Grouping.GroupBy,
			Source:  cfg.Grouping.Source,
			Size:    cfg.Grouping.Size,
			Ignore:  cfg.Grouping.Ignore,
			Lookup:  lookup,
		},
	}, nil
}
