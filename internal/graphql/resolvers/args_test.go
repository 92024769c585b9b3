package resolvers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

func TestListingActions_PageIsLast(t *testing.T) {
	actions, err := listingActions(map[string]interface{}{
		"page":     3,
		"phrase":   "bag",
		"sort":     "price_ASC",
		"pageSize": 24,
		"filters": []interface{}{
			map[string]interface{}{"attribute": "price", "from": 10.0, "to": 50.0},
			map[string]interface{}{"attribute": "color", "eq": "Red"},
		},
	})
	require.NoError(t, err)

	require.Len(t, actions, 6)
	assert.Equal(t, services.SetPhrase{Phrase: "bag"}, actions[0])
	assert.Equal(t, services.UpdateFilter{Filter: entities.FacetFilter{Attribute: "price", Range: &entities.RangeFilter{From: 10, To: 50}}}, actions[2])
	assert.Equal(t, services.SetPage{Page: 3}, actions[5])

	state := services.NewSearchState(12)
	for _, a := range actions {
		state = services.Reduce(state, a)
	}
	assert.Equal(t, 3, state.CurrentPage)
	assert.Equal(t, 2, state.FilterCount())
}

func TestFilterFromInput_Errors(t *testing.T) {
	_, err := filterFromInput(map[string]interface{}{"eq": "Red"})
	assert.Error(t, err)

	_, err = filterFromInput(map[string]interface{}{"attribute": "color", "in": []interface{}{""}})
	assert.Error(t, err)
}
