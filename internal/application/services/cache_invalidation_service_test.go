package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
)

func TestCacheInvalidationService_Start(t *testing.T) {
	cache := NewMockCacheProvider()
	eventBus := NewMockEventBus()
	service := services.NewCacheInvalidationService(cache, eventBus, nil)

	require.NoError(t, service.Start())
	defer service.Stop()

	assert.Equal(t, 1, eventBus.SubscriberCount())
}

func TestCacheInvalidationService_ProductsIndexed(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCacheProvider()
	eventBus := NewMockEventBus()
	service := services.NewCacheInvalidationService(cache, eventBus, nil)

	require.NoError(t, service.Start())
	defer service.Stop()

	require.NoError(t, cache.Set(ctx, "http:cache:GET:/api/plp/listing?q=bags", []byte("data"), 300))
	require.NoError(t, cache.Set(ctx, "http:cache:GET:/api/plp/categories", []byte("data"), 300))

	require.NoError(t, eventBus.Publish(ctx, providers.EventChannelCatalogUpdates, &entities.CatalogEvent{
		ID:   "evt-1",
		Type: entities.CatalogEventProductsIndexed,
	}))

	assert.Eventually(t, func() bool {
		return !cache.Has("http:cache:GET:/api/plp/listing?q=bags")
	}, time.Second, 10*time.Millisecond)
	assert.True(t, cache.Has("http:cache:GET:/api/plp/categories"))
}

func TestCacheInvalidationService_CategoriesChangedReloadsTree(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCacheProvider()
	eventBus := NewMockEventBus()

	provider := new(MockCategoryProvider)
	provider.On("FetchCategories", mock.Anything, mock.Anything).Return([]entities.Category{
		{ID: "1", Name: "Gear", URLPath: "gear"},
	}, nil)
	categories := services.NewCategoryService(provider, entities.CategoryQuery{})

	service := services.NewCacheInvalidationService(cache, eventBus, categories)
	require.NoError(t, service.Start())
	defer service.Stop()

	require.NoError(t, cache.Set(ctx, "http:cache:GET:/api/plp/categories", []byte("data"), 300))
	require.NoError(t, eventBus.Publish(ctx, providers.EventChannelCatalogUpdates, &entities.CatalogEvent{
		ID:   "evt-2",
		Type: entities.CatalogEventCategoriesChange,
	}))

	assert.Eventually(t, func() bool {
		_, ok := categories.FindByPath("gear")
		return ok
	}, time.Second, 10*time.Millisecond)
	assert.False(t, cache.Has("http:cache:GET:/api/plp/categories"))
	assert.Contains(t, cache.Patterns(), services.CachePatternCatalog)
}

func TestCacheInvalidationService_InvalidateAll(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCacheProvider()
	service := services.NewCacheInvalidationService(cache, NewMockEventBus(), nil)

	require.NoError(t, cache.Set(ctx, "catalog:categories:default", []byte("data"), 300))
	require.NoError(t, service.InvalidateAll(ctx))

	assert.False(t, cache.Has("catalog:categories:default"))
	assert.Equal(t, []string{
		services.CachePatternListings,
		services.CachePatternCategories,
		services.CachePatternCatalog,
	}, cache.Patterns())
}
