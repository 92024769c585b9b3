package services

import (
	"strings"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

// SearchState is the shopper-controlled part of a listing. Values are
// treated as immutable; Reduce returns a new state.
type SearchState struct {
	Phrase      string                 `json:"phrase"`
	Filters     []entities.FacetFilter `json:"filters"`
	Sort        string                 `json:"sort"`
	CurrentPage int                    `json:"currentPage"`
	PageSize    int                    `json:"pageSize"`
}

// NewSearchState returns the initial state for a mount
func NewSearchState(pageSize int) SearchState {
	return SearchState{CurrentPage: 1, PageSize: pageSize}
}

// FilterCount counts selected options. Range and eq filters count once.
func (s SearchState) FilterCount() int {
	count := 0
	for _, f := range s.Filters {
		switch {
		case len(f.In) > 0:
			count += len(f.In)
		case f.Range != nil, f.Eq != "":
			count++
		}
	}
	return count
}

// Filter returns the filter on attribute, if any
func (s SearchState) Filter(attribute string) (entities.FacetFilter, bool) {
	for _, f := range s.Filters {
		if f.Attribute == attribute {
			return f, true
		}
	}
	return entities.FacetFilter{}, false
}

func (s SearchState) clone() SearchState {
	out := s
	out.Filters = entities.CloneFilters(s.Filters)
	return out
}

// Action is a state transition applied by Reduce
type Action interface {
	isAction()
}

// SetPhrase replaces the search phrase
type SetPhrase struct{ Phrase string }

// SetSort replaces the sort order, e.g. "price_ASC"
type SetSort struct{ Sort string }

// UpdateFilter replaces the filter on the same attribute or adds it
type UpdateFilter struct{ Filter entities.FacetFilter }

// RemoveFilter drops a filter, or only Option from its "in" list when set
type RemoveFilter struct {
	Attribute string
	Option    string
}

// UpdateFilterOptions toggles Option in the "in" list of Attribute
type UpdateFilterOptions struct {
	Attribute string
	Option    string
}

// ClearFilters drops every filter
type ClearFilters struct{}

// SetPage moves to a page
type SetPage struct{ Page int }

// SetPageSize changes the page size
type SetPageSize struct{ PageSize int }

func (SetPhrase) isAction()           {}
func (SetSort) isAction()             {}
func (UpdateFilter) isAction()        {}
func (RemoveFilter) isAction()        {}
func (UpdateFilterOptions) isAction() {}
func (ClearFilters) isAction()        {}
func (SetPage) isAction()             {}
func (SetPageSize) isAction()         {}

// Reduce applies action to state. Every change other than SetPage moves the
// listing back to page 1.
func Reduce(state SearchState, action Action) SearchState {
	next := state.clone()

	switch a := action.(type) {
	case SetPhrase:
		next.Phrase = strings.TrimSpace(a.Phrase)
	case SetSort:
		next.Sort = a.Sort
	case UpdateFilter:
		if a.Filter.Attribute == "" {
			return state
		}
		if a.Filter.IsEmpty() {
			next.Filters = withoutFilter(next.Filters, a.Filter.Attribute)
		} else {
			next.Filters = entities.UpsertFilter(next.Filters, a.Filter)
		}
	case RemoveFilter:
		if a.Option == "" {
			next.Filters = withoutFilter(next.Filters, a.Attribute)
		} else {
			next.Filters = withoutOption(next.Filters, a.Attribute, a.Option)
		}
	case UpdateFilterOptions:
		next.Filters = toggleOption(next.Filters, a.Attribute, a.Option)
	case ClearFilters:
		next.Filters = nil
	case SetPage:
		if a.Page < 1 {
			a.Page = 1
		}
		next.CurrentPage = a.Page
		return next
	case SetPageSize:
		if a.PageSize > 0 {
			next.PageSize = a.PageSize
		}
	default:
		return state
	}

	next.CurrentPage = 1
	return next
}

func withoutFilter(filters []entities.FacetFilter, attribute string) []entities.FacetFilter {
	out := filters[:0:0]
	for _, f := range filters {
		if f.Attribute != attribute {
			out = append(out, f)
		}
	}
	return out
}

func withoutOption(filters []entities.FacetFilter, attribute, option string) []entities.FacetFilter {
	out := filters[:0:0]
	for _, f := range filters {
		if f.Attribute == attribute {
			f.In = removeString(f.In, option)
			if f.Eq == option {
				f.Eq = ""
			}
			if f.IsEmpty() {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

func toggleOption(filters []entities.FacetFilter, attribute, option string) []entities.FacetFilter {
	if attribute == "" || option == "" {
		return filters
	}
	for i, f := range filters {
		if f.Attribute != attribute {
			continue
		}
		if containsString(f.In, option) {
			return withoutOption(filters, attribute, option)
		}
		f.In = append(append([]string(nil), f.In...), option)
		filters[i] = f
		return filters
	}
	return append(filters, entities.FacetFilter{Attribute: attribute, In: []string{option}})
}

func removeString(values []string, v string) []string {
	var out []string
	for _, s := range values {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
