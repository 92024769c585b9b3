package bootstrap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/livesearch-plp/internal/application/storefront"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/pkg/config"
	apperrors "github.com/zatekoja/livesearch-plp/pkg/errors"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return value, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memoryCache) DeletePattern(context.Context, string) error { return nil }

func (c *memoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *memoryCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

func catalogServer(t *testing.T, hits *int32, headers chan<- http.Header) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if headers != nil {
			select {
			case headers <- r.Header.Clone():
			default:
			}
		}
		_, _ = w.Write([]byte(`{"data":{"categories":[
			{"id":"3","name":"Gear","urlPath":"gear","children":["4"]},
			{"id":"4","name":"Bags","urlPath":"gear/bags","parentId":"3","children":[]}
		]}}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func testCatalogConfig() config.CatalogConfig {
	return config.CatalogConfig{
		Timeout:          time.Second,
		CategoryRootIDs:  []string{"3"},
		CategoryRoles:    []string{"active"},
		CategoryDepth:    4,
		CategoryStartLvl: 1,
	}
}

func TestBackends_RequiresCatalogURL(t *testing.T) {
	backends := NewBackends(testCatalogConfig(), nil, nil, nil)

	_, err := backends.Backend(context.Background(), &entities.StoreDetails{StoreViewCode: "default"})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestBackends_MemoizesPerStore(t *testing.T) {
	var hits int32
	headers := make(chan http.Header, 1)
	server := catalogServer(t, &hits, headers)
	backends := NewBackends(testCatalogConfig(), nil, nil, nil)

	store := &entities.StoreDetails{APIURL: server.URL, StoreViewCode: "default", APIKey: "search_gql"}
	first, err := backends.Backend(context.Background(), store)
	require.NoError(t, err)
	again, err := backends.Backend(context.Background(), &entities.StoreDetails{APIURL: server.URL, StoreViewCode: "default", APIKey: "search_gql"})
	require.NoError(t, err)
	other, err := backends.Backend(context.Background(), &entities.StoreDetails{APIURL: server.URL, StoreViewCode: "fr"})
	require.NoError(t, err)

	assert.Same(t, first, again)
	assert.NotSame(t, first, other)
	assert.Same(t, first.Searcher, first.Metadata)

	require.NoError(t, first.Categories.EnsureLoaded(context.Background()))
	require.NoError(t, again.Categories.EnsureLoaded(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	// each mount reloads the shared tree
	require.NoError(t, again.Categories.Load(context.Background()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	h := <-headers
	assert.Equal(t, "search_gql", h.Get("X-Api-Key"))
	assert.Equal(t, "default", h.Get("Magento-Store-View-Code"))
}

func TestBackends_MountRefetchesCategoryTree(t *testing.T) {
	var categoryHits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "categories") {
			_, _ = w.Write([]byte(`{"data":{"attributeMetadata":{"sortable":[],"filterableInSearch":[]}}}`))
			return
		}
		if atomic.AddInt32(&categoryHits, 1) == 1 {
			_, _ = w.Write([]byte(`{"data":{"categories":[
				{"id":"3","name":"Gear","urlPath":"gear","children":[]}
			]}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"categories":[
			{"id":"3","name":"Gear","urlPath":"gear","children":["7"]},
			{"id":"7","name":"New","urlPath":"gear/new","parentId":"3","children":[]}
		]}}`))
	}))
	defer server.Close()

	backends := NewBackends(testCatalogConfig(), nil, nil, nil)
	mounter := storefront.NewMounter(storefront.Defaults{PageSize: 12}, backends.Backend, nil, nil, 2)
	store := &entities.StoreDetails{APIURL: server.URL, StoreViewCode: "fr"}

	_, err := mounter.MountCategory(context.Background(), store, "gear", "", nil)
	require.NoError(t, err)
	_, err = mounter.MountCategory(context.Background(), store, "gear", "", nil)
	require.NoError(t, err)

	backend, err := backends.Backend(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&categoryHits))
	assert.Equal(t, []string{"gear", "gear/new"}, backend.Categories.ResolveURLPaths("gear"))
}

func TestBackends_CachesCatalogReads(t *testing.T) {
	var hits int32
	server := catalogServer(t, &hits, nil)
	cache := newMemoryCache()
	backends := NewBackends(testCatalogConfig(), cache, nil, nil)

	backend, err := backends.Backend(context.Background(), &entities.StoreDetails{APIURL: server.URL, StoreViewCode: "default"})
	require.NoError(t, err)
	require.NoError(t, backend.Categories.Load(context.Background()))

	assert.Eventually(t, func() bool { return cache.size() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, backend.Categories.Load(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	bags, ok := backend.Categories.FindByID("4")
	require.True(t, ok)
	assert.Equal(t, "gear/bags", bags.URLPath)
}

func TestBackends_CommerceClient(t *testing.T) {
	backends := NewBackends(testCatalogConfig(), nil, nil, nil)

	assert.Nil(t, backends.CommerceClient(&entities.StoreDetails{}))
	client := backends.CommerceClient(&entities.StoreDetails{CommerceURL: "https://shop.test/graphql/"})
	require.NotNil(t, client)
	assert.Equal(t, "https://shop.test/graphql", client.Endpoint())
}

func TestNewDefaults(t *testing.T) {
	cfg := &config.Config{
		Catalog: config.CatalogConfig{APIURL: "https://catalog.test/graphql", StoreViewCode: "default"},
		Storefront: config.StorefrontConfig{
			PageSize:         24,
			PageSizeOptions:  "12,24",
			SearchQueryParam: "q",
			Locale:           "en_US",
		},
		Grouping: config.GroupingConfig{GroupBy: "brand", Source: "facet", Size: 3},
	}

	defaults, err := NewDefaults(cfg)

	require.NoError(t, err)
	assert.Equal(t, "https://catalog.test/graphql", defaults.APIURL)
	assert.Equal(t, 24, defaults.PageSize)
	assert.Equal(t, "brand", defaults.Grouping.GroupBy)
	assert.Nil(t, defaults.Grouping.Lookup)
}

func TestNewDefaults_MissingLookupFile(t *testing.T) {
	cfg := &config.Config{Grouping: config.GroupingConfig{Source: "lookup", LookupFile: "/nonexistent/groups.yaml"}}

	_, err := NewDefaults(cfg)

	assert.Error(t, err)
}

func TestCategoryQuery(t *testing.T) {
	q := CategoryQuery(testCatalogConfig())

	assert.Equal(t, entities.CategoryQuery{IDs: []string{"3"}, Roles: []string{"active"}, Depth: 4, StartLevel: 1}, q)
}
