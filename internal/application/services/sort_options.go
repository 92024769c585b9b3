package services

import (
	"strings"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

// SortOptions lists the sort orders offered for a listing. The first option
// is the context default: position on category pages, relevance otherwise.
func SortOptions(tr Translator, metadata *entities.AttributeMetadata, displayOutOfStock, categoryActive bool) []entities.SortOption {
	if tr == nil {
		tr = keyTranslator{}
	}

	var options []entities.SortOption
	if categoryActive {
		options = append(options, entities.SortOption{Label: tr.T("SortDropdown.positionLabel"), Value: entities.CategorySortDefault})
	} else {
		options = append(options, entities.SortOption{Label: tr.T("SortDropdown.relevanceLabel"), Value: entities.SearchSortDefault})
	}

	if metadata == nil {
		return options
	}

	for _, attr := range metadata.Sortable {
		code := attr.Attribute
		switch {
		case strings.Contains(code, "relevance"), strings.Contains(code, "position"):
			continue
		case strings.Contains(code, "inStock") && !displayOutOfStock:
			continue
		}

		if attr.Numeric && strings.Contains(code, "price") {
			options = append(options,
				entities.SortOption{Label: attr.Label + ": " + tr.T("SortDropdown.lowToHigh"), Value: code + "_ASC"},
				entities.SortOption{Label: attr.Label + ": " + tr.T("SortDropdown.highToLow"), Value: code + "_DESC"},
			)
			continue
		}
		options = append(options, entities.SortOption{Label: attr.Label, Value: code + "_DESC"})
	}
	return options
}
