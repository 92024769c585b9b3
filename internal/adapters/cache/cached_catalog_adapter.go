package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/observability"
)

// Cache TTLs (in seconds)
const (
	categoriesTTL = 900 // category trees change rarely
	metadataTTL   = 600
)

// CatalogSource is the part of the catalog the decorator caches
type CatalogSource interface {
	providers.CategoryProvider
	providers.AttributeMetadataProvider
}

// CachedCatalogAdapter wraps a catalog source with Redis caching of the
// category forest and attribute metadata. Keys are scoped per store view so
// that one cache can serve several storefronts.
type CachedCatalogAdapter struct {
	source    CatalogSource
	cache     providers.CacheProvider
	metrics   *observability.Metrics
	storeView string
}

// NewCachedCatalogAdapter creates a caching decorator. metrics may be nil.
func NewCachedCatalogAdapter(source CatalogSource, cache providers.CacheProvider, metrics *observability.Metrics, storeView string) *CachedCatalogAdapter {
	if storeView == "" {
		storeView = "default"
	}
	return &CachedCatalogAdapter{source: source, cache: cache, metrics: metrics, storeView: storeView}
}

func (a *CachedCatalogAdapter) categoriesKey(q entities.CategoryQuery) string {
	return fmt.Sprintf("catalog:%s:categories:%s:%s:%d:%d",
		a.storeView, strings.Join(q.IDs, ","), strings.Join(q.Roles, ","), q.Depth, q.StartLevel)
}

func (a *CachedCatalogAdapter) metadataKey() string {
	return fmt.Sprintf("catalog:%s:metadata", a.storeView)
}

// FetchCategories returns the cached forest or fetches and caches it
func (a *CachedCatalogAdapter) FetchCategories(ctx context.Context, query entities.CategoryQuery) ([]entities.Category, error) {
	key := a.categoriesKey(query)

	var categories []entities.Category
	if a.lookup(ctx, key, "categories", &categories) {
		return categories, nil
	}

	categories, err := a.source.FetchCategories(ctx, query)
	if err != nil {
		return nil, err
	}
	a.store(key, categories, categoriesTTL)
	return categories, nil
}

// FetchAttributeMetadata returns cached metadata or fetches and caches it
func (a *CachedCatalogAdapter) FetchAttributeMetadata(ctx context.Context) (*entities.AttributeMetadata, error) {
	key := a.metadataKey()

	var metadata entities.AttributeMetadata
	if a.lookup(ctx, key, "attribute_metadata", &metadata) {
		return &metadata, nil
	}

	fetched, err := a.source.FetchAttributeMetadata(ctx)
	if err != nil {
		return nil, err
	}
	a.store(key, fetched, metadataTTL)
	return fetched, nil
}

func (a *CachedCatalogAdapter) lookup(ctx context.Context, key, name string, out interface{}) bool {
	cached, err := a.cache.Get(ctx, key)
	if err == nil {
		if err := json.Unmarshal(cached, out); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, name)
			return true
		}
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to unmarshal cached catalog entry")
	}
	observability.RecordCacheMiss(ctx, a.metrics, name)
	return false
}

// store writes asynchronously so the response is never blocked on Redis
func (a *CachedCatalogAdapter) store(key string, value interface{}, ttl int) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to marshal catalog entry")
		return
	}
	go func() {
		if err := a.cache.Set(context.Background(), key, data, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to cache catalog entry")
		}
	}()
}
