package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) SearchProducts(ctx context.Context, req entities.ProductSearchRequest) (*entities.ProductSearchResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*entities.ProductSearchResult)
	return res, args.Error(1)
}

func skus(values ...string) *entities.ProductSearchResult {
	res := &entities.ProductSearchResult{TotalCount: len(values)}
	for _, v := range values {
		res.Items = append(res.Items, entities.Product{ProductView: entities.ProductView{SKU: v}})
	}
	return res
}

func phraseIs(phrase string) interface{} {
	return mock.MatchedBy(func(req entities.ProductSearchRequest) bool { return req.Phrase == phrase })
}

func TestRunner_Request(t *testing.T) {
	runner := NewRunner(new(mockSearcher), 5)

	req := runner.Request(GoldenQuery{
		Kind:     KindCategory,
		Category: "gear/bags",
		Filters:  []entities.FacetFilter{{Attribute: "color", In: []string{"black"}}},
	})

	assert.Equal(t, 5, req.PageSize)
	assert.Equal(t, 1, req.CurrentPage)
	assert.Equal(t, entities.ParseSort(entities.CategorySortDefault), req.Sort)
	require.Len(t, req.Filter, 2)
	assert.Equal(t, entities.FacetFilter{Attribute: entities.AttributeCategoryPath, Eq: "gear/bags"}, req.Filter[1])

	req = runner.Request(GoldenQuery{Kind: KindPhrase, Phrase: "jacket"})
	assert.Equal(t, entities.ParseSort(entities.SearchSortDefault), req.Sort)
	assert.Empty(t, req.Filter)
}

func TestRunner_Run(t *testing.T) {
	searcher := new(mockSearcher)
	searcher.On("SearchProducts", mock.Anything, phraseIs("jacket")).Return(skus("MJ01", "MJ02"), nil)
	searcher.On("SearchProducts", mock.Anything, phraseIs("bag")).Return(skus("X", "24-MB01"), nil)
	searcher.On("SearchProducts", mock.Anything, phraseIs("tent")).Return(nil, errors.New("backend down"))

	summary, err := NewRunner(searcher, 0).Run(context.Background(), []GoldenQuery{
		{ID: "q1", Kind: KindPhrase, Phrase: "jacket", ExpectedSKUs: []string{"MJ01"}},
		{ID: "q2", Kind: KindPhrase, Phrase: "bag", ExpectedSKUs: []string{"24-MB01"}},
		{ID: "q3", Kind: KindPhrase, Phrase: "tent", ExpectedSKUs: []string{"T1"}},
	})

	require.NoError(t, err)
	assert.Equal(t, DefaultK, summary.K)
	assert.Equal(t, 3, summary.TotalQueries)
	assert.Equal(t, 1, summary.FailedQueries)
	assert.Equal(t, 2, summary.QueriesWithHits)
	assert.InDelta(t, 1.0, summary.AvgRecallAtK, 1e-9)
	assert.InDelta(t, 0.75, summary.AvgMRRAtK, 1e-9)
	assert.Equal(t, 2, summary.ByKind[KindPhrase].Count)

	require.Len(t, summary.Results, 3)
	assert.Equal(t, []string{"MJ01", "MJ02"}, summary.Results[0].RetrievedSKUs)
	assert.Equal(t, "backend down", summary.Results[2].Error)
}

func TestRunner_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(new(mockSearcher), 10).Run(ctx, []GoldenQuery{{ID: "q1", Kind: KindPhrase, Phrase: "jacket"}})

	assert.ErrorIs(t, err, context.Canceled)
}
