package services_test

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

type MockProductSearcher struct {
	mock.Mock
}

func (m *MockProductSearcher) SearchProducts(ctx context.Context, req entities.ProductSearchRequest) (*entities.ProductSearchResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*entities.ProductSearchResult)
	return res, args.Error(1)
}

type MockCategoryProvider struct {
	mock.Mock
}

func (m *MockCategoryProvider) FetchCategories(ctx context.Context, query entities.CategoryQuery) ([]entities.Category, error) {
	args := m.Called(ctx, query)
	res, _ := args.Get(0).([]entities.Category)
	return res, args.Error(1)
}

type MockMetadataProvider struct {
	mock.Mock
}

func (m *MockMetadataProvider) FetchAttributeMetadata(ctx context.Context) (*entities.AttributeMetadata, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*entities.AttributeMetadata)
	return res, args.Error(1)
}

type MockCartProvider struct {
	mock.Mock
}

func (m *MockCartProvider) CreateEmptyCart(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockCartProvider) AddProductsToCart(ctx context.Context, cartID string, items []entities.CartItem) (*entities.AddToCartResult, error) {
	args := m.Called(ctx, cartID, items)
	res, _ := args.Get(0).(*entities.AddToCartResult)
	return res, args.Error(1)
}

type MockProductRefiner struct {
	mock.Mock
}

func (m *MockProductRefiner) RefineProduct(ctx context.Context, optionIDs []string, sku string) (*entities.RefinedProduct, error) {
	args := m.Called(ctx, optionIDs, sku)
	res, _ := args.Get(0).(*entities.RefinedProduct)
	return res, args.Error(1)
}

type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) LogEvent(ctx context.Context, event *entities.SearchEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockAnalyticsRepository) GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.ZeroResultQuery, error) {
	args := m.Called(ctx, limit)
	res, _ := args.Get(0).([]*entities.ZeroResultQuery)
	return res, args.Error(1)
}

type MockProductIndex struct {
	mock.Mock
}

func (m *MockProductIndex) IndexProducts(ctx context.Context, products []entities.IndexedProduct) (int, error) {
	args := m.Called(ctx, products)
	return args.Int(0), args.Error(1)
}

// MockCacheProvider for testing
type MockCacheProvider struct {
	mu       sync.RWMutex
	data     map[string][]byte
	deleted  []string
	patterns []string
}

func NewMockCacheProvider() *MockCacheProvider {
	return &MockCacheProvider{data: make(map[string][]byte)}
}

func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key], nil
}

func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *MockCacheProvider) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, pattern)
	for key := range m.data {
		if globMatch(pattern, key) {
			delete(m.data, key)
			m.deleted = append(m.deleted, key)
		}
	}
	return nil
}

func (m *MockCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MockCacheProvider) Patterns() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.patterns...)
}

func (m *MockCacheProvider) Has(key string) bool {
	ok, _ := m.Exists(context.Background(), key)
	return ok
}

// MockEventBus for testing
type MockEventBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan *entities.CatalogEvent
	published   []*entities.CatalogEvent
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{subscribers: make(map[string][]chan *entities.CatalogEvent)}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.CatalogEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, event)
	for _, ch := range m.subscribers[channel] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.CatalogEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *entities.CatalogEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	return ch, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers[channel] {
		close(ch)
	}
	delete(m.subscribers, channel)
	return nil
}

func (m *MockEventBus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for channel, chans := range m.subscribers {
		for _, ch := range chans {
			close(ch)
		}
		delete(m.subscribers, channel)
	}
	return nil
}

func (m *MockEventBus) Published() []*entities.CatalogEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*entities.CatalogEvent(nil), m.published...)
}

func (m *MockEventBus) SubscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers)
}

// globMatch matches redis-style patterns where * spans any characters
func globMatch(pattern, key string) bool {
	re := "^" + strings.ReplaceAll(regexp.QuoteMeta(pattern), `\*`, ".*") + "$"
	return regexp.MustCompile(re).MatchString(key)
}
