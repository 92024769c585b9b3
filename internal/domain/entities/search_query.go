package entities

import "strings"

// Sort orders shared by the listing and the commerce backend
const (
	SearchSortDefault   = "relevance_DESC"
	CategorySortDefault = "position_ASC"
)

// Attributes the listing filters on that are not shopper facets
const (
	AttributeCategoryPath = "categoryPath"
	AttributeCategoryIDs  = "categoryIds"
	AttributeVisibility   = "visibility"
	AttributeInStock      = "inStock"
)

// RangeFilter bounds a numeric facet. A zero To means open-ended.
type RangeFilter struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
}

// FacetFilter constrains one attribute. Exactly one of Eq, In or Range is set.
type FacetFilter struct {
	Attribute string       `json:"attribute"`
	Eq        string       `json:"eq,omitempty"`
	In        []string     `json:"in,omitempty"`
	Range     *RangeFilter `json:"range,omitempty"`
}

// IsEmpty reports whether the filter carries no constraint
func (f FacetFilter) IsEmpty() bool {
	return f.Eq == "" && len(f.In) == 0 && f.Range == nil
}

// Clone returns a deep copy
func (f FacetFilter) Clone() FacetFilter {
	out := f
	if f.In != nil {
		out.In = append([]string(nil), f.In...)
	}
	if f.Range != nil {
		r := *f.Range
		out.Range = &r
	}
	return out
}

// ViewHistoryEntry is one product the shopper recently viewed
type ViewHistoryEntry struct {
	SKU      string `json:"sku" yaml:"sku"`
	DateTime string `json:"dateTime" yaml:"dateTime"`
}

// QueryContext personalises a search
type QueryContext struct {
	CustomerGroup   string             `json:"customerGroup" yaml:"customerGroup"`
	UserViewHistory []ViewHistoryEntry `json:"userViewHistory" yaml:"userViewHistory"`
}

// SearchQuery is the snapshot a listing fetch is built from
type SearchQuery struct {
	Phrase            string        `json:"phrase"`
	Filters           []FacetFilter `json:"filters"`
	Sort              string        `json:"sort"`
	Context           QueryContext  `json:"context"`
	PageSize          int           `json:"pageSize"`
	CurrentPage       int           `json:"currentPage"`
	DisplayOutOfStock bool          `json:"displayOutOfStock"`
}

// HasFilter reports whether any filter targets attribute
func (q SearchQuery) HasFilter(attribute string) bool {
	for _, f := range q.Filters {
		if f.Attribute == attribute {
			return true
		}
	}
	return false
}

// CloneFilters deep-copies a filter list
func CloneFilters(filters []FacetFilter) []FacetFilter {
	if filters == nil {
		return nil
	}
	out := make([]FacetFilter, len(filters))
	for i, f := range filters {
		out[i] = f.Clone()
	}
	return out
}

// UpsertFilter replaces the filter on the same attribute in place, or
// appends it. Applying the same filter twice yields the same list.
func UpsertFilter(filters []FacetFilter, filter FacetFilter) []FacetFilter {
	out := CloneFilters(filters)
	for i, f := range out {
		if f.Attribute == filter.Attribute {
			out[i] = filter.Clone()
			return out
		}
	}
	return append(out, filter.Clone())
}

// SortInput is the backend form of a sort option
type SortInput struct {
	Attribute string `json:"attribute"`
	Direction string `json:"direction"`
}

// ParseSort converts "attribute_DIRECTION" into backend sort input. The
// attribute may itself contain underscores; the split is at the last one.
func ParseSort(sort string) []SortInput {
	sort = strings.TrimSpace(sort)
	idx := strings.LastIndex(sort, "_")
	if idx <= 0 || idx == len(sort)-1 {
		return nil
	}
	return []SortInput{{
		Attribute: sort[:idx],
		Direction: strings.ToUpper(sort[idx+1:]),
	}}
}

// ProductSearchRequest holds the variables of one productSearch call
type ProductSearchRequest struct {
	Phrase      string        `json:"phrase"`
	Filter      []FacetFilter `json:"filter"`
	Sort        []SortInput   `json:"sort,omitempty"`
	Context     *QueryContext `json:"context,omitempty"`
	PageSize    int           `json:"pageSize"`
	CurrentPage int           `json:"currentPage"`
}
