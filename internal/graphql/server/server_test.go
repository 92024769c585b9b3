package server_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/99designs/gqlgen/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/application/storefront"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/graphql/loaders"
	"github.com/zatekoja/livesearch-plp/internal/graphql/resolvers"
	"github.com/zatekoja/livesearch-plp/internal/graphql/server"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) SearchProducts(ctx context.Context, req entities.ProductSearchRequest) (*entities.ProductSearchResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*entities.ProductSearchResult)
	return res, args.Error(1)
}

type mockCategories struct {
	mock.Mock
}

func (m *mockCategories) FetchCategories(ctx context.Context, query entities.CategoryQuery) ([]entities.Category, error) {
	args := m.Called(ctx, query)
	res, _ := args.Get(0).([]entities.Category)
	return res, args.Error(1)
}

type mockCart struct {
	mock.Mock
}

func (m *mockCart) CreateEmptyCart(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockCart) AddProductsToCart(ctx context.Context, cartID string, items []entities.CartItem) (*entities.AddToCartResult, error) {
	args := m.Called(ctx, cartID, items)
	res, _ := args.Get(0).(*entities.AddToCartResult)
	return res, args.Error(1)
}

type mockAnalytics struct {
	mock.Mock
}

func (m *mockAnalytics) LogEvent(ctx context.Context, event *entities.SearchEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockAnalytics) GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.ZeroResultQuery, error) {
	args := m.Called(ctx, limit)
	res, _ := args.Get(0).([]*entities.ZeroResultQuery)
	return res, args.Error(1)
}

type fixture struct {
	searcher   *mockSearcher
	categories *mockCategories
	cart       *mockCart
	analytics  *mockAnalytics
	client     *client.Client
	handler    http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		searcher:   new(mockSearcher),
		categories: new(mockCategories),
		cart:       new(mockCart),
		analytics:  new(mockAnalytics),
	}
	f.categories.On("FetchCategories", mock.Anything, mock.Anything).Return([]entities.Category{
		{ID: "3", Name: "Gear", URLPath: "gear", Level: 2, Children: []string{"4", "5"}},
		{ID: "4", Name: "Bags", URLPath: "gear/bags", ParentID: "3", Level: 3, Children: []string{}},
		{ID: "5", Name: "Watches", URLPath: "gear/watches", ParentID: "3", Level: 3, Children: []string{}},
	}, nil).Maybe()

	categoryService := services.NewCategoryService(f.categories, entities.CategoryQuery{IDs: []string{"3"}})
	factory := func(ctx context.Context, store *entities.StoreDetails) (*storefront.Backend, error) {
		return &storefront.Backend{Searcher: f.searcher, Categories: categoryService}, nil
	}
	defaults := storefront.Defaults{PageSize: 12, PageSizeOptions: "12,24", MinQueryLength: 3, Locale: "en_US", SearchQueryParam: "q"}
	store := &entities.StoreDetails{StoreViewCode: "default"}
	storefront.ApplyDefaults(store, defaults)

	resolver := resolvers.NewResolver(
		storefront.NewMounter(defaults, factory, nil, nil, 2),
		store,
		categoryService,
		services.NewCartService(f.cart, nil, nil, ""),
		services.NewSearchAnalyticsService(f.analytics),
	)
	schema, err := resolvers.NewSchema(resolver)
	require.NoError(t, err)

	f.handler = server.NewHandler(schema, func() *loaders.Loaders { return loaders.NewLoaders(categoryService) })
	f.client = client.New(f.handler)
	return f
}

func TestListingQuery(t *testing.T) {
	f := newFixture(t)
	f.searcher.On("SearchProducts", mock.Anything, mock.MatchedBy(func(req entities.ProductSearchRequest) bool {
		return req.Phrase == "duffle" && req.PageSize == 24 && req.CurrentPage == 2
	})).Return(&entities.ProductSearchResult{
		Items: []entities.Product{{
			Product: entities.ProductDetails{
				Typename: "SimpleProduct",
				SKU:      "24-MB01",
				Name:     "Joust Duffle Bag",
				PriceRange: entities.PriceRange{Minimum: entities.PriceBound{
					Final: entities.Money{Value: 34, Currency: "USD"},
				}},
			},
		}},
		Facets: []entities.Facet{{
			Attribute: "price",
			Title:     "Price",
			Buckets:   []entities.Bucket{{Type: entities.BucketTypeRange, Title: "0.0-50.0", Count: 1, To: 50}},
		}},
		TotalCount: 30,
		PageInfo:   entities.PageInfo{CurrentPage: 2, PageSize: 24, TotalPages: 2},
	}, nil).Once()

	var resp struct {
		Listing struct {
			Phrase     string
			TotalCount int
			TotalPages int
			Items      []struct {
				SKU   string `json:"sku"`
				Price struct {
					Value    float64
					Currency string
				}
			}
			Facets []struct {
				Attribute string
				Buckets   []struct {
					Title string
					To    float64
				}
			}
			FilterCount int
		}
	}
	f.client.MustPost(`query($phrase: String, $filters: [FilterInput]) {
		listing(phrase: $phrase, filters: $filters, pageSize: 24, page: 2) {
			phrase totalCount totalPages
			items { sku price { value currency } }
			facets { attribute buckets { title to } }
			filterCount
		}
	}`, &resp,
		client.Var("phrase", "duffle"),
		client.Var("filters", []map[string]interface{}{{"attribute": "color", "in": []string{"Black"}}}),
	)

	assert.Equal(t, "duffle", resp.Listing.Phrase)
	assert.Equal(t, 30, resp.Listing.TotalCount)
	require.Len(t, resp.Listing.Items, 1)
	assert.Equal(t, "24-MB01", resp.Listing.Items[0].SKU)
	assert.Equal(t, 34.0, resp.Listing.Items[0].Price.Value)
	assert.Equal(t, "price", resp.Listing.Facets[0].Attribute)
	assert.Equal(t, 1, resp.Listing.FilterCount)

	sent := f.searcher.Calls[0].Arguments.Get(1).(entities.ProductSearchRequest)
	var color *entities.FacetFilter
	for i := range sent.Filter {
		if sent.Filter[i].Attribute == "color" {
			color = &sent.Filter[i]
		}
	}
	require.NotNil(t, color)
	assert.Equal(t, []string{"Black"}, color.In)
}

func TestListingQuery_BackendFailureIsMasked(t *testing.T) {
	f := newFixture(t)
	f.searcher.On("SearchProducts", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: refused"))

	var resp struct {
		Listing *struct{ TotalCount int }
	}
	err := f.client.Post(`{ listing(category: "gear") { totalCount } }`, &resp)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "commerce backend unavailable")
	assert.NotContains(t, err.Error(), "refused")
}

func TestCategoryQuery_ChildrenThroughLoader(t *testing.T) {
	f := newFixture(t)

	var resp struct {
		Category struct {
			ID       string
			URLPaths []string `json:"urlPaths"`
			Children []struct {
				Name    string
				URLPath string `json:"urlPath"`
			}
		}
	}
	f.client.MustPost(`{ category(path: "gear") { id urlPaths children { name urlPath } } }`, &resp)

	assert.Equal(t, "3", resp.Category.ID)
	assert.Equal(t, []string{"gear", "gear/bags", "gear/watches"}, resp.Category.URLPaths)
	require.Len(t, resp.Category.Children, 2)
	assert.Equal(t, "Bags", resp.Category.Children[0].Name)
	f.categories.AssertNumberOfCalls(t, "FetchCategories", 1)
}

func TestCategoryQuery_UnknownPathIsNull(t *testing.T) {
	f := newFixture(t)

	var resp struct {
		Category *struct{ ID string }
	}
	f.client.MustPost(`{ category(path: "garden") { id } }`, &resp)

	assert.Nil(t, resp.Category)
}

func TestSortOptionsQuery(t *testing.T) {
	f := newFixture(t)

	var resp struct {
		SortOptions []struct {
			Label string
			Value string
		}
	}
	f.client.MustPost(`{ sortOptions(category: "gear") { label value } }`, &resp)

	require.NotEmpty(t, resp.SortOptions)
	assert.Equal(t, entities.CategorySortDefault, resp.SortOptions[0].Value)
}

func TestAddToCartMutation(t *testing.T) {
	f := newFixture(t)
	f.cart.On("AddProductsToCart", mock.Anything, "cart-9", []entities.CartItem{{SKU: "24-MB01", Quantity: 2}}).
		Return(&entities.AddToCartResult{CartID: "cart-9", Items: []entities.CartLine{{SKU: "24-MB01", Quantity: 2}}}, nil)

	var resp struct {
		AddToCart struct {
			Success   bool
			CartID    string `json:"cartId"`
			ItemCount int
		}
	}
	f.client.MustPost(`mutation { addToCart(sku: "24-MB01", quantity: 2, cartId: "cart-9", productType: "SimpleProduct") { success cartId itemCount } }`, &resp)

	assert.True(t, resp.AddToCart.Success)
	assert.Equal(t, "cart-9", resp.AddToCart.CartID)
	assert.Equal(t, 2, resp.AddToCart.ItemCount)
	f.cart.AssertNotCalled(t, "CreateEmptyCart", mock.Anything)
}

func TestZeroResultQueries(t *testing.T) {
	f := newFixture(t)
	f.analytics.On("GetZeroResultQueries", mock.Anything, 5).Return([]*entities.ZeroResultQuery{
		{Phrase: "teapot", Searches: 3, LastSeen: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}, nil)

	var resp struct {
		ZeroResultQueries []struct {
			Phrase   string
			Searches int
			LastSeen string
		}
	}
	f.client.MustPost(`{ zeroResultQueries(limit: 5) { phrase searches lastSeen } }`, &resp)

	require.Len(t, resp.ZeroResultQueries, 1)
	assert.Equal(t, "2026-03-01T09:00:00Z", resp.ZeroResultQueries[0].LastSeen)
}

func TestHandler_RejectsMutationOverGET(t *testing.T) {
	f := newFixture(t)

	target := "/graphql?query=" + url.QueryEscape(`mutation { addToCart(sku: "x") { success } }`)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	f.cart.AssertNotCalled(t, "CreateEmptyCart", mock.Anything)
}

func TestHandler_MissingQuery(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/graphql", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
