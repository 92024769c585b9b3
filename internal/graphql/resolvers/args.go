package resolvers

import (
	"fmt"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

// listingActions turns listing arguments into state actions. The page is
// applied last since every other action resets it.
func listingActions(args map[string]interface{}) ([]services.Action, error) {
	var actions []services.Action

	if phrase, ok := args["phrase"].(string); ok && phrase != "" {
		actions = append(actions, services.SetPhrase{Phrase: phrase})
	}
	if sort, ok := args["sort"].(string); ok && sort != "" {
		actions = append(actions, services.SetSort{Sort: sort})
	}
	if raw, ok := args["filters"].([]interface{}); ok {
		for i, item := range raw {
			input, _ := item.(map[string]interface{})
			filter, err := filterFromInput(input)
			if err != nil {
				return nil, fmt.Errorf("filters[%d]: %w", i, err)
			}
			actions = append(actions, services.UpdateFilter{Filter: filter})
		}
	}
	if size, ok := args["pageSize"].(int); ok && size > 0 {
		actions = append(actions, services.SetPageSize{PageSize: size})
	}
	if page, ok := args["page"].(int); ok && page > 0 {
		actions = append(actions, services.SetPage{Page: page})
	}
	return actions, nil
}

func filterFromInput(input map[string]interface{}) (entities.FacetFilter, error) {
	attribute, _ := input["attribute"].(string)
	if attribute == "" {
		return entities.FacetFilter{}, fmt.Errorf("attribute is required")
	}
	filter := entities.FacetFilter{Attribute: attribute}

	from, hasFrom := input["from"].(float64)
	to, hasTo := input["to"].(float64)
	if hasFrom || hasTo {
		filter.Range = &entities.RangeFilter{From: from, To: to}
		return filter, nil
	}

	if eq, ok := input["eq"].(string); ok && eq != "" {
		filter.Eq = eq
		return filter, nil
	}
	if in, ok := input["in"].([]interface{}); ok {
		for _, v := range in {
			if s, ok := v.(string); ok && s != "" {
				filter.In = append(filter.In, s)
			}
		}
	}
	if filter.IsEmpty() {
		return filter, fmt.Errorf("one of eq, in or from/to is required for %s", attribute)
	}
	return filter, nil
}
