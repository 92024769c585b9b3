package cache

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, ErrCacheMiss
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = map[string][]byte{}
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *memoryCache) has(key string) bool {
	ok, _ := c.Exists(context.Background(), key)
	return ok
}

type mockCatalogSource struct {
	mock.Mock
}

func (m *mockCatalogSource) FetchCategories(ctx context.Context, query entities.CategoryQuery) ([]entities.Category, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Category), args.Error(1)
}

func (m *mockCatalogSource) FetchAttributeMetadata(ctx context.Context) (*entities.AttributeMetadata, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AttributeMetadata), args.Error(1)
}

func TestCachedCatalogAdapter_CategoriesMissThenHit(t *testing.T) {
	source := new(mockCatalogSource)
	cache := newMemoryCache()
	adapter := NewCachedCatalogAdapter(source, cache, nil, "default")

	query := entities.CategoryQuery{IDs: []string{"3"}, Roles: []string{"active"}, Depth: 4, StartLevel: 1}
	forest := []entities.Category{{ID: "3", Name: "Gear", URLPath: "gear", Children: []string{}}}
	source.On("FetchCategories", mock.Anything, query).Return(forest, nil).Once()

	first, err := adapter.FetchCategories(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, forest, first)

	key := "catalog:default:categories:3:active:4:1"
	require.Eventually(t, func() bool { return cache.has(key) }, time.Second, 5*time.Millisecond)

	second, err := adapter.FetchCategories(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, forest, second)
	source.AssertExpectations(t)
}

func TestCachedCatalogAdapter_CorruptEntryFallsBackToSource(t *testing.T) {
	source := new(mockCatalogSource)
	cache := newMemoryCache()
	require.NoError(t, cache.Set(context.Background(), "catalog:eu:metadata", []byte("{not json"), 60))

	metadata := &entities.AttributeMetadata{Sortable: []entities.AttributeInfo{{Attribute: "price", Label: "Price"}}}
	source.On("FetchAttributeMetadata", mock.Anything).Return(metadata, nil).Once()

	adapter := NewCachedCatalogAdapter(source, cache, nil, "eu")
	got, err := adapter.FetchAttributeMetadata(context.Background())

	require.NoError(t, err)
	assert.Equal(t, metadata, got)
	require.Eventually(t, func() bool {
		raw, _ := cache.Get(context.Background(), "catalog:eu:metadata")
		var decoded entities.AttributeMetadata
		return json.Unmarshal(raw, &decoded) == nil
	}, time.Second, 5*time.Millisecond)
}

func TestCachedCatalogAdapter_SourceErrorIsNotCached(t *testing.T) {
	source := new(mockCatalogSource)
	cache := newMemoryCache()
	source.On("FetchAttributeMetadata", mock.Anything).Return(nil, assert.AnError)

	adapter := NewCachedCatalogAdapter(source, cache, nil, "")
	_, err := adapter.FetchAttributeMetadata(context.Background())

	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, cache.has("catalog:default:metadata"))
}
