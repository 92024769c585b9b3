package handlers_test

import (
	"context"

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

func gearForest() []entities.Category {
	return []entities.Category{
		{ID: "3", Name: "Gear", URLPath: "gear", Children: []string{"4", "5"}},
		{ID: "4", Name: "Bags", URLPath: "gear/bags", ParentID: "3", Children: []string{}},
		{ID: "5", Name: "Watches", URLPath: "gear/watches", ParentID: "3", Children: []string{}},
	}
}

func bagResult() *entities.ProductSearchResult {
	return &entities.ProductSearchResult{
		Items: []entities.Product{{
			Product:     entities.ProductDetails{SKU: "24-MB01", Name: "Joust Duffle Bag"},
			ProductView: entities.ProductView{SKU: "24-MB01", Name: "Joust Duffle Bag", InStock: true},
		}},
		Facets:     []entities.Facet{},
		TotalCount: 1,
		PageInfo:   entities.PageInfo{CurrentPage: 1, PageSize: 24, TotalPages: 1},
	}
}
