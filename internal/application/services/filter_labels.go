package services

import (
	"strconv"
	"strings"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

// SelectedFilter is a removable pill for one active filter option
type SelectedFilter struct {
	Attribute string `json:"attribute"`
	Option    string `json:"option,omitempty"`
	Label     string `json:"label"`
}

// PriceFormat controls how range filters are labelled
type PriceFormat struct {
	Symbol string
	Rate   string
}

// SelectedFilters builds labels for every active option of state's filters
func SelectedFilters(
	tr Translator,
	filters []entities.FacetFilter,
	categoryNames []entities.CategoryName,
	categoryActive bool,
	price PriceFormat,
) []SelectedFilter {
	if tr == nil {
		tr = keyTranslator{}
	}

	var out []SelectedFilter
	for _, f := range filters {
		if f.Range != nil {
			out = append(out, SelectedFilter{Attribute: f.Attribute, Label: RangeLabel(tr, *f.Range, price)})
			continue
		}
		options := f.In
		if f.Eq != "" {
			options = []string{f.Eq}
		}
		for _, option := range options {
			out = append(out, SelectedFilter{
				Attribute: f.Attribute,
				Option:    option,
				Label:     OptionLabel(f.Attribute, option, categoryNames, categoryActive),
			})
		}
	}
	return out
}

// RangeLabel renders "$10.00 - $50.00", or "$10.00 and above" for an open range
func RangeLabel(tr Translator, r entities.RangeFilter, price PriceFormat) string {
	symbol := price.Symbol
	if symbol == "" {
		symbol = "$"
	}
	rate, err := strconv.ParseFloat(price.Rate, 64)
	if err != nil || rate == 0 {
		rate = 1
	}

	from := rate * float64(int64(r.From+0.5))
	label := symbol + strconv.FormatFloat(from, 'f', 2, 64)
	if r.From == 0 {
		label = symbol + "0"
	}

	to := rate * float64(int64(r.To+0.5))
	if to == 0 {
		return label + tr.T("PriceFilter.andAbove")
	}
	return label + " - " + symbol + strconv.FormatFloat(to, 'f', 2, 64)
}

// OptionLabel names a single filter option. On category pages a category
// facet value shows its category name; yes/no flags read as the attribute.
func OptionLabel(attribute, option string, categoryNames []entities.CategoryName, categoryActive bool) string {
	if categoryActive {
		for _, c := range categoryNames {
			if c.Attribute == attribute && c.Value == option && c.Name != "" {
				return c.Name
			}
		}
	}

	words := strings.Join(strings.Split(attribute, "_"), " ")
	switch option {
	case "yes":
		return words
	case "no":
		return "not " + words
	}
	return option
}
