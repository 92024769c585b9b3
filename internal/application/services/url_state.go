package services

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

// URL query parameters managed by the listing
const (
	ParamPage      = "p"
	ParamPageSize  = "page_size"
	ParamSortOrder = "product_list_order"
	ParamPhrase    = "q"
	ParamSearch    = "search_query"

	rangeSeparator = "--"
)

var nonFilterParams = map[string]bool{
	ParamPhrase:    true,
	ParamSearch:    true,
	ParamPage:      true,
	ParamSortOrder: true,
	ParamPageSize:  true,
}

// URLState maps SearchState to and from page query parameters
type URLState struct {
	searchParam     string
	defaultPageSize int
	filterable      map[string]bool
}

// NewURLState creates a codec. Only attributes in filterable are read back
// as filters; any other unknown parameter is left alone.
func NewURLState(searchParam string, defaultPageSize int, filterable []string) *URLState {
	if searchParam == "" {
		searchParam = ParamPhrase
	}
	set := make(map[string]bool, len(filterable))
	for _, attr := range filterable {
		if attr != "" {
			set[attr] = true
		}
	}
	return &URLState{
		searchParam:     searchParam,
		defaultPageSize: defaultPageSize,
		filterable:      set,
	}
}

// WithFilterable returns a copy that also decodes the given attributes
func (u *URLState) WithFilterable(attrs ...string) *URLState {
	set := make(map[string]bool, len(u.filterable)+len(attrs))
	for k := range u.filterable {
		set[k] = true
	}
	for _, a := range attrs {
		if a != "" {
			set[a] = true
		}
	}
	return &URLState{searchParam: u.searchParam, defaultPageSize: u.defaultPageSize, filterable: set}
}

// Decode reads the listing state out of query parameters
func (u *URLState) Decode(values url.Values) SearchState {
	state := NewSearchState(u.defaultPageSize)
	state.Phrase = strings.TrimSpace(values.Get(u.searchParam))
	state.Sort = values.Get(ParamSortOrder)

	if page, err := strconv.Atoi(values.Get(ParamPage)); err == nil && page > 0 {
		state.CurrentPage = page
	}
	if size, err := strconv.Atoi(values.Get(ParamPageSize)); err == nil && size > 0 {
		state.PageSize = size
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		if nonFilterParams[key] || key == u.searchParam || !u.filterable[key] {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if filter, ok := decodeFilter(key, values[key]); ok {
			state.Filters = append(state.Filters, filter)
		}
	}
	return state
}

// decodeFilter reads one attribute's values. The URL carries no operator,
// so plain values always decode to in, including ones encoded from eq.
func decodeFilter(attribute string, raw []string) (entities.FacetFilter, bool) {
	filter := entities.FacetFilter{Attribute: attribute}
	for _, v := range raw {
		if v == "" {
			continue
		}
		if from, to, ok := strings.Cut(v, rangeSeparator); ok {
			filter.Range = &entities.RangeFilter{From: parseBound(from), To: parseBound(to)}
			filter.In = nil
			continue
		}
		filter.In = append(filter.In, v)
	}
	return filter, !filter.IsEmpty()
}

func parseBound(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// Encode writes state into a fresh set of query parameters
func (u *URLState) Encode(state SearchState) url.Values {
	return u.Apply(url.Values{}, state)
}

// Apply rewrites the listing parameters of values to match state and keeps
// every unrelated parameter. The input is not modified.
func (u *URLState) Apply(values url.Values, state SearchState) url.Values {
	out := url.Values{}
	for k, v := range values {
		if nonFilterParams[k] || k == u.searchParam || u.filterable[k] {
			continue
		}
		out[k] = append([]string(nil), v...)
	}

	if state.Phrase != "" {
		out.Set(u.searchParam, state.Phrase)
	}
	if state.Sort != "" {
		out.Set(ParamSortOrder, state.Sort)
	}
	if state.CurrentPage > 1 {
		out.Set(ParamPage, strconv.Itoa(state.CurrentPage))
	}
	if state.PageSize > 0 && state.PageSize != u.defaultPageSize {
		out.Set(ParamPageSize, strconv.Itoa(state.PageSize))
	}

	for _, f := range state.Filters {
		out.Del(f.Attribute)
		switch {
		case f.Range != nil:
			out.Set(f.Attribute, formatBound(f.Range.From)+rangeSeparator+formatBound(f.Range.To))
		case len(f.In) > 0:
			for _, v := range f.In {
				out.Add(f.Attribute, v)
			}
		case f.Eq != "":
			out.Set(f.Attribute, f.Eq)
		}
	}
	return out
}

// URL renders state onto base, keeping base's path and unrelated params
func (u *URLState) URL(base *url.URL, state SearchState) string {
	if base == nil {
		base = &url.URL{}
	}
	next := *base
	next.RawQuery = u.Apply(base.Query(), state).Encode()
	return next.String()
}

func formatBound(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
