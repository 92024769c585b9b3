package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	apperrors "github.com/zatekoja/livesearch-plp/pkg/errors"
)

func findFilter(filters []entities.FacetFilter, attribute string) (entities.FacetFilter, bool) {
	for _, f := range filters {
		if f.Attribute == attribute {
			return f, true
		}
	}
	return entities.FacetFilter{}, false
}

// groupRequestFor matches the request of one group value
func groupRequestFor(attribute, value string) interface{} {
	return mock.MatchedBy(func(req entities.ProductSearchRequest) bool {
		f, ok := findFilter(req.Filter, attribute)
		return ok && f.Eq == value
	})
}

// primaryRequest matches requests that carry no filter on attribute
func primaryRequest(attribute string) interface{} {
	return mock.MatchedBy(func(req entities.ProductSearchRequest) bool {
		_, ok := findFilter(req.Filter, attribute)
		return !ok
	})
}

func product(sku string, attrs ...entities.ProductAttribute) entities.Product {
	return entities.Product{
		Product:     entities.ProductDetails{Typename: entities.ProductTypeSimple, SKU: sku, Name: "Product " + sku},
		ProductView: entities.ProductView{SKU: sku, Name: "Product " + sku, Attributes: attrs},
	}
}

func TestProductSearchService_MinQueryLengthGate(t *testing.T) {
	searcher := new(MockProductSearcher)
	service := services.NewProductSearchService(searcher, services.ListingOptions{})

	state := services.NewSearchState(24)
	state.Phrase = " ab "

	result, err := service.Search(context.Background(), services.ListingRequest{State: state})

	require.NoError(t, err)
	assert.False(t, result.MinQueryLengthReached)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.TotalCount)
	assert.Equal(t, 1, result.TotalPages)
	searcher.AssertNotCalled(t, "SearchProducts", mock.Anything, mock.Anything)
}

func TestProductSearchService_CategoryPageSkipsGate(t *testing.T) {
	searcher := new(MockProductSearcher)
	searcher.On("SearchProducts", mock.Anything, mock.Anything).
		Return(&entities.ProductSearchResult{Items: []entities.Product{product("a")}, TotalCount: 1}, nil)
	service := services.NewProductSearchService(searcher, services.ListingOptions{})

	result, err := service.Search(context.Background(), services.ListingRequest{
		State:            services.NewSearchState(24),
		CategoryPath:     "gear",
		CategoryURLPaths: []string{"gear"},
	})

	require.NoError(t, err)
	assert.True(t, result.MinQueryLengthReached)
	assert.Len(t, result.Items, 1)
	searcher.AssertNumberOfCalls(t, "SearchProducts", 1)
}

func TestCategoryFilters(t *testing.T) {
	assert.Empty(t, services.CategoryFilters(nil, ""))

	single := services.CategoryFilters([]string{"gear"}, "")
	require.Len(t, single, 1)
	assert.Equal(t, "gear", single[0].Eq)

	many := services.CategoryFilters([]string{"gear", "gear/bags"}, "12")
	require.Len(t, many, 2)
	assert.Equal(t, entities.AttributeCategoryPath, many[0].Attribute)
	assert.Equal(t, []string{"gear", "gear/bags"}, many[0].In)
	assert.Equal(t, entities.FacetFilter{Attribute: entities.AttributeCategoryIDs, Eq: "12"}, many[1])
}

func TestProductSearchService_BuildQuerySortDefaults(t *testing.T) {
	service := services.NewProductSearchService(new(MockProductSearcher), services.ListingOptions{})

	state := services.NewSearchState(24)
	state.Sort = entities.SearchSortDefault

	onePath := service.BuildQuery(services.ListingRequest{State: state, CategoryPath: "gear", CategoryURLPaths: []string{"gear"}})
	assert.Equal(t, entities.CategorySortDefault, onePath.Sort)

	twoPaths := service.BuildQuery(services.ListingRequest{State: state, CategoryPath: "gear", CategoryURLPaths: []string{"gear", "gear/bags"}})
	assert.Equal(t, entities.SearchSortDefault, twoPaths.Sort)

	state.Sort = "price_ASC"
	explicit := service.BuildQuery(services.ListingRequest{State: state, CategoryPath: "gear", CategoryURLPaths: []string{"gear"}})
	assert.Equal(t, "price_ASC", explicit.Sort)
}

func TestProductSearchService_RequestCarriesVisibilityAndStock(t *testing.T) {
	var captured entities.ProductSearchRequest
	searcher := new(MockProductSearcher)
	searcher.On("SearchProducts", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(entities.ProductSearchRequest) }).
		Return(&entities.ProductSearchResult{}, nil)
	service := services.NewProductSearchService(searcher, services.ListingOptions{})

	state := services.NewSearchState(12)
	state.Phrase = "backpack"
	state.Sort = "price_desc"

	_, err := service.Search(context.Background(), services.ListingRequest{State: state, DisplayOutOfStock: false})
	require.NoError(t, err)

	visibility, ok := findFilter(captured.Filter, entities.AttributeVisibility)
	require.True(t, ok)
	assert.Equal(t, []string{"Search", "Catalog, Search"}, visibility.In)

	stock, ok := findFilter(captured.Filter, entities.AttributeInStock)
	require.True(t, ok)
	assert.Equal(t, "true", stock.Eq)

	assert.Equal(t, []entities.SortInput{{Attribute: "price", Direction: "DESC"}}, captured.Sort)
	assert.Equal(t, 12, captured.PageSize)
	assert.Equal(t, 1, captured.CurrentPage)
}

func TestProductSearchService_PageCorrection(t *testing.T) {
	searcher := new(MockProductSearcher)
	searcher.On("SearchProducts", mock.Anything, mock.Anything).Return(&entities.ProductSearchResult{
		Items:      []entities.Product{product("a"), product("b")},
		TotalCount: 2,
		PageInfo:   entities.PageInfo{CurrentPage: 3, PageSize: 24, TotalPages: 1},
	}, nil)
	service := services.NewProductSearchService(searcher, services.ListingOptions{})

	state := services.NewSearchState(24)
	state.Phrase = "jacket"
	state.CurrentPage = 3

	result, err := service.Search(context.Background(), services.ListingRequest{State: state})

	require.NoError(t, err)
	assert.True(t, result.PageCorrected)
	assert.Equal(t, 1, result.CurrentPage)
}

func TestProductSearchService_PrimaryFailureIsExternal(t *testing.T) {
	searcher := new(MockProductSearcher)
	searcher.On("SearchProducts", mock.Anything, mock.Anything).Return(nil, errors.New("502 bad gateway"))
	service := services.NewProductSearchService(searcher, services.ListingOptions{})

	state := services.NewSearchState(24)
	state.Phrase = "jacket"

	_, err := service.Search(context.Background(), services.ListingRequest{State: state})

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func groupingOptions(source string) services.ListingOptions {
	return services.ListingOptions{
		GroupingEnabled: true,
		Grouping: entities.GroupConfig{
			GroupBy: "brand",
			Source:  source,
			Size:    3,
			Ignore:  []string{"Unbranded"},
			Lookup:  []entities.GroupValue{{ID: "1", Title: "Acme"}, {ID: "2", Title: "Globex"}},
		},
	}
}

func TestProductSearchService_GroupedFacetSourceDropsFailedGroups(t *testing.T) {
	searcher := new(MockProductSearcher)
	searcher.On("SearchProducts", mock.Anything, primaryRequest("brand")).Return(&entities.ProductSearchResult{
		TotalCount: 40,
		Facets: []entities.Facet{{
			Attribute: "brand",
			Buckets: []entities.Bucket{
				{Type: entities.BucketTypeScalar, Title: "Acme", ID: "1"},
				{Type: entities.BucketTypeScalar, Title: "Globex", ID: "2"},
				{Type: entities.BucketTypeScalar, Title: "Unbranded", ID: "3"},
			},
		}},
	}, nil)
	searcher.On("SearchProducts", mock.Anything, groupRequestFor("brand", "Acme")).Return(&entities.ProductSearchResult{
		Items:      []entities.Product{product("a1", entities.ProductAttribute{Name: "brand", Value: "ACME Corp"})},
		TotalCount: 12,
	}, nil)
	searcher.On("SearchProducts", mock.Anything, groupRequestFor("brand", "Globex")).Return(nil, errors.New("timeout"))

	service := services.NewProductSearchService(searcher, groupingOptions(services.GroupSourceFacet))

	result, err := service.Search(context.Background(), services.ListingRequest{
		State:            services.NewSearchState(24),
		CategoryPath:     "gear",
		CategoryURLPaths: []string{"gear"},
	})

	require.NoError(t, err)
	require.True(t, result.Grouped())
	assert.Empty(t, result.Items)
	assert.Equal(t, 1, result.FailedRequests)
	require.Equal(t, 1, result.Groups.Len())

	group, ok := result.Groups.Get("ACME Corp")
	require.True(t, ok)
	assert.Equal(t, "Acme", group.Value)
	assert.Equal(t, 12, group.TotalCount)

	searcher.AssertNumberOfCalls(t, "SearchProducts", 3)
	searcher.AssertNotCalled(t, "SearchProducts", mock.Anything, groupRequestFor("brand", "Unbranded"))
}

func TestProductSearchService_GroupRequestShape(t *testing.T) {
	var groupReq entities.ProductSearchRequest
	searcher := new(MockProductSearcher)
	searcher.On("SearchProducts", mock.Anything, primaryRequest("brand")).Return(&entities.ProductSearchResult{}, nil)
	searcher.On("SearchProducts", mock.Anything, groupRequestFor("brand", "Acme")).
		Run(func(args mock.Arguments) { groupReq = args.Get(1).(entities.ProductSearchRequest) }).
		Return(&entities.ProductSearchResult{}, nil)
	searcher.On("SearchProducts", mock.Anything, groupRequestFor("brand", "Globex")).Return(&entities.ProductSearchResult{}, nil)

	service := services.NewProductSearchService(searcher, groupingOptions(services.GroupSourceLookup))

	state := services.NewSearchState(24)
	state.CurrentPage = 4
	_, err := service.Search(context.Background(), services.ListingRequest{
		State:            state,
		CategoryPath:     "gear",
		CategoryURLPaths: []string{"gear"},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, groupReq.PageSize)
	assert.Equal(t, 1, groupReq.CurrentPage)
	path, ok := findFilter(groupReq.Filter, entities.AttributeCategoryPath)
	require.True(t, ok)
	assert.Equal(t, "gear", path.Eq)
}

func TestProductSearchService_LookupSourceAllGroupsFail(t *testing.T) {
	searcher := new(MockProductSearcher)
	searcher.On("SearchProducts", mock.Anything, primaryRequest("brand")).Return(&entities.ProductSearchResult{TotalCount: 9}, nil)
	searcher.On("SearchProducts", mock.Anything, groupRequestFor("brand", "Acme")).Return(nil, errors.New("boom"))
	searcher.On("SearchProducts", mock.Anything, groupRequestFor("brand", "Globex")).Return(nil, errors.New("boom"))

	service := services.NewProductSearchService(searcher, groupingOptions(services.GroupSourceLookup))

	result, err := service.Search(context.Background(), services.ListingRequest{
		State:            services.NewSearchState(24),
		CategoryPath:     "gear",
		CategoryURLPaths: []string{"gear"},
	})

	require.NoError(t, err)
	require.True(t, result.Grouped())
	assert.Equal(t, 0, result.Groups.Len())
	assert.Empty(t, result.Items)
	assert.Equal(t, 2, result.FailedRequests)
	assert.Equal(t, 9, result.TotalCount)
}

func TestProductSearchService_NoGroupingWithPhraseOrGroupFilter(t *testing.T) {
	searcher := new(MockProductSearcher)
	searcher.On("SearchProducts", mock.Anything, mock.Anything).
		Return(&entities.ProductSearchResult{Items: []entities.Product{product("a")}, TotalCount: 1}, nil)
	service := services.NewProductSearchService(searcher, groupingOptions(services.GroupSourceLookup))

	withPhrase := services.NewSearchState(24)
	withPhrase.Phrase = "anvil"
	result, err := service.Search(context.Background(), services.ListingRequest{State: withPhrase})
	require.NoError(t, err)
	assert.False(t, result.Grouped())
	assert.Len(t, result.Items, 1)

	filtered := services.Reduce(services.NewSearchState(24), services.UpdateFilter{
		Filter: entities.FacetFilter{Attribute: "brand", Eq: "Acme"},
	})
	result, err = service.Search(context.Background(), services.ListingRequest{
		State:            filtered,
		CategoryPath:     "gear",
		CategoryURLPaths: []string{"gear"},
	})
	require.NoError(t, err)
	assert.False(t, result.Grouped())

	searcher.AssertNumberOfCalls(t, "SearchProducts", 2)
}

func TestProductSearchService_FacetSourceWithoutBucketsIsFlat(t *testing.T) {
	searcher := new(MockProductSearcher)
	searcher.On("SearchProducts", mock.Anything, mock.Anything).
		Return(&entities.ProductSearchResult{Items: []entities.Product{product("a")}, TotalCount: 1}, nil)
	service := services.NewProductSearchService(searcher, groupingOptions(services.GroupSourceFacet))

	result, err := service.Search(context.Background(), services.ListingRequest{
		State:            services.NewSearchState(24),
		CategoryPath:     "gear",
		CategoryURLPaths: []string{"gear"},
	})

	require.NoError(t, err)
	assert.False(t, result.Grouped())
	assert.Len(t, result.Items, 1)
}
