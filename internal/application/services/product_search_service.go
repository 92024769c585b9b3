package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
	apperrors "github.com/zatekoja/livesearch-plp/pkg/errors"
)

// Listing defaults
const (
	DefaultPageSize        = 24
	DefaultPageSizeOptions = "12,24,36"
	DefaultMinQueryLength  = 3
	DefaultGroupSize       = 3
	ShowAllLimit           = 500

	GroupSourceFacet  = "facet"
	GroupSourceLookup = "lookup"

	defaultMaxParallel = 8
)

var (
	visibilityCategory = []string{"Catalog", "Catalog, Search"}
	visibilitySearch   = []string{"Search", "Catalog, Search"}
)

// ListingOptions are the store-level settings a search runs with
type ListingOptions struct {
	MinQueryLength   int
	PageSizeOptions  string
	AllowAllProducts bool
	ShowAllLabel     string
	GroupingEnabled  bool
	Grouping         entities.GroupConfig
	MaxParallel      int
}

// ListingRequest is everything one listing fetch depends on
type ListingRequest struct {
	State             SearchState
	Context           entities.QueryContext
	DisplayOutOfStock bool

	// CategoryPath and CategoryID are the category the page is mounted on.
	// CategoryURLPaths is CategoryPath expanded to itself and descendants.
	CategoryPath     string
	CategoryID       string
	CategoryURLPaths []string
}

// CategoryActive reports whether the listing is a category page
func (r ListingRequest) CategoryActive() bool {
	return r.CategoryPath != "" || r.CategoryID != ""
}

// ListingResult is the published outcome of a listing fetch
type ListingResult struct {
	Items                 []entities.Product        `json:"items"`
	Groups                *entities.GroupedProducts `json:"grouped,omitempty"`
	Facets                []entities.Facet          `json:"facets"`
	TotalCount            int                       `json:"total_count"`
	TotalPages            int                       `json:"total_pages"`
	CurrentPage           int                       `json:"current_page"`
	PageSize              int                       `json:"page_size"`
	PageSizeOptions       []entities.PageSizeOption `json:"page_size_options"`
	CategoryNames         []entities.CategoryName   `json:"category_names"`
	MinQueryLengthReached bool                      `json:"min_query_length_reached"`
	PageCorrected         bool                      `json:"-"`
	FailedRequests        int                       `json:"-"`
	Query                 entities.SearchQuery      `json:"-"`
}

// Grouped reports whether the result is split into named groups
func (r *ListingResult) Grouped() bool {
	return r != nil && r.Groups != nil
}

type groupOutcome struct {
	value  entities.GroupValue
	result *entities.ProductSearchResult
	err    error
}

// ProductSearchService turns listing state into backend product searches
// and merges their results.
type ProductSearchService struct {
	searcher providers.ProductSearcher
	opts     ListingOptions

	tracer        trace.Tracer
	requests      metric.Int64Counter
	groupFailures metric.Int64Counter
}

// NewProductSearchService creates a product search service
func NewProductSearchService(searcher providers.ProductSearcher, opts ListingOptions) *ProductSearchService {
	if opts.MinQueryLength <= 0 {
		opts.MinQueryLength = DefaultMinQueryLength
	}
	if opts.Grouping.Size <= 0 {
		opts.Grouping.Size = DefaultGroupSize
	}
	if opts.Grouping.Source == "" {
		opts.Grouping.Source = GroupSourceFacet
	}
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = defaultMaxParallel
	}

	meter := otel.Meter("github.com/zatekoja/livesearch-plp/services")
	requests, _ := meter.Int64Counter("plp.search.requests",
		metric.WithDescription("Backend product search requests issued"))
	groupFailures, _ := meter.Int64Counter("plp.search.group_failures",
		metric.WithDescription("Grouped search requests dropped after failing"))

	return &ProductSearchService{
		searcher:      searcher,
		opts:          opts,
		tracer:        otel.Tracer("github.com/zatekoja/livesearch-plp/services"),
		requests:      requests,
		groupFailures: groupFailures,
	}
}

// Options returns the options the service was built with, defaults applied
func (s *ProductSearchService) Options() ListingOptions {
	return s.opts
}

// MinQueryLengthReached reports whether req may be sent to the backend.
// Category pages always search; otherwise the trimmed phrase must be long enough.
func (s *ProductSearchService) MinQueryLengthReached(req ListingRequest) bool {
	if req.CategoryActive() {
		return true
	}
	return len([]rune(strings.TrimSpace(req.State.Phrase))) >= s.opts.MinQueryLength
}

// BuildQuery merges shopper state and category context into the query
// snapshot sent to the backend.
func (s *ProductSearchService) BuildQuery(req ListingRequest) entities.SearchQuery {
	filters := entities.CloneFilters(req.State.Filters)
	filters = append(filters, CategoryFilters(req.CategoryURLPaths, req.CategoryID)...)

	sort := req.State.Sort
	if len(req.CategoryURLPaths) == 1 && (sort == "" || sort == entities.SearchSortDefault) {
		sort = entities.CategorySortDefault
	}

	pageSize := req.State.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := req.State.CurrentPage
	if page <= 0 {
		page = 1
	}

	return entities.SearchQuery{
		Phrase:            req.State.Phrase,
		Filters:           filters,
		Sort:              sort,
		Context:           req.Context,
		PageSize:          pageSize,
		CurrentPage:       page,
		DisplayOutOfStock: req.DisplayOutOfStock,
	}
}

// CategoryFilters returns the category constraints of a listing: one path is
// an "eq" match, several are an "in" match, and an id adds a categoryIds match.
func CategoryFilters(paths []string, categoryID string) []entities.FacetFilter {
	var filters []entities.FacetFilter
	switch len(paths) {
	case 0:
	case 1:
		filters = append(filters, entities.FacetFilter{Attribute: entities.AttributeCategoryPath, Eq: paths[0]})
	default:
		filters = append(filters, entities.FacetFilter{
			Attribute: entities.AttributeCategoryPath,
			In:        append([]string(nil), paths...),
		})
	}
	if categoryID != "" {
		filters = append(filters, entities.FacetFilter{Attribute: entities.AttributeCategoryIDs, Eq: categoryID})
	}
	return filters
}

// ShouldGroup reports whether query is listed as groups
func (s *ProductSearchService) ShouldGroup(query entities.SearchQuery) bool {
	groupBy := s.opts.Grouping.GroupBy
	return s.opts.GroupingEnabled &&
		groupBy != "" &&
		query.Phrase == "" &&
		!query.HasFilter(groupBy)
}

// Search runs one listing fetch. A failed primary request is returned as an
// EXTERNAL error; failed group requests are dropped from the merge.
func (s *ProductSearchService) Search(ctx context.Context, req ListingRequest) (*ListingResult, error) {
	ctx, span := s.tracer.Start(ctx, "ProductSearchService.Search")
	defer span.End()

	if !s.MinQueryLengthReached(req) {
		span.SetAttributes(attribute.Bool("plp.min_query_length_reached", false))
		return s.emptyResult(req), nil
	}

	start := time.Now()
	query := s.BuildQuery(req)
	primaryReq := s.toRequest(query, req.CategoryActive())
	grouped := s.ShouldGroup(query)

	span.SetAttributes(
		attribute.Bool("plp.grouped", grouped),
		attribute.Int("plp.filters", len(query.Filters)),
		attribute.Bool("plp.category", req.CategoryActive()),
	)

	var (
		primary  *entities.ProductSearchResult
		outcomes []groupOutcome
		values   []entities.GroupValue
		err      error
	)

	if grouped && s.opts.Grouping.Source == GroupSourceLookup {
		values = s.filterIgnored(s.opts.Grouping.Lookup)
		primary, outcomes, err = s.searchAll(ctx, primaryReq, values, true)
	} else {
		primary, err = s.search(ctx, primaryReq)
		if err == nil && grouped {
			values = s.filterIgnored(facetGroupValues(primary.Facets, s.opts.Grouping.GroupBy))
			_, outcomes, _ = s.searchAll(ctx, primaryReq, values, false)
		}
	}
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.NewExternalError("product search failed", err)
	}

	result := s.publish(query, primary)
	if grouped && len(values) > 0 {
		result.Groups, result.FailedRequests = s.mergeGroups(ctx, outcomes)
		result.Items = []entities.Product{}
	}

	log.Ctx(ctx).Debug().
		Str("phrase", query.Phrase).
		Int("total_count", result.TotalCount).
		Bool("grouped", result.Grouped()).
		Int("failed_requests", result.FailedRequests).
		Dur("took", time.Since(start)).
		Msg("listing search completed")

	return result, nil
}

func (s *ProductSearchService) search(ctx context.Context, req entities.ProductSearchRequest) (*entities.ProductSearchResult, error) {
	s.requests.Add(ctx, 1)
	res, err := s.searcher.SearchProducts(ctx, req)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = &entities.ProductSearchResult{}
	}
	return res, nil
}

// searchAll issues one request per group value in parallel, plus the primary
// request when withPrimary is set. Every request settles on its own: group
// errors stay in their outcome slot and never cancel siblings.
func (s *ProductSearchService) searchAll(
	ctx context.Context,
	base entities.ProductSearchRequest,
	values []entities.GroupValue,
	withPrimary bool,
) (*entities.ProductSearchResult, []groupOutcome, error) {
	outcomes := make([]groupOutcome, len(values))

	var (
		primary    *entities.ProductSearchResult
		primaryErr error
		g          errgroup.Group
	)
	g.SetLimit(s.opts.MaxParallel)

	if withPrimary {
		g.Go(func() error {
			primary, primaryErr = s.search(ctx, base)
			return nil
		})
	}
	for i, v := range values {
		outcomes[i].value = v
		g.Go(func() error {
			outcomes[i].result, outcomes[i].err = s.search(ctx, s.groupRequest(base, v))
			return nil
		})
	}
	_ = g.Wait()

	return primary, outcomes, primaryErr
}

func (s *ProductSearchService) groupRequest(base entities.ProductSearchRequest, v entities.GroupValue) entities.ProductSearchRequest {
	req := base
	req.Filter = append(entities.CloneFilters(base.Filter), entities.FacetFilter{
		Attribute: s.opts.Grouping.GroupBy,
		Eq:        v.Title,
	})
	req.PageSize = s.opts.Grouping.Size
	req.CurrentPage = 1
	return req
}

// mergeGroups keys fulfilled, non-empty group results by the grouping
// attribute of their first item.
func (s *ProductSearchService) mergeGroups(ctx context.Context, outcomes []groupOutcome) (*entities.GroupedProducts, int) {
	groups := &entities.GroupedProducts{Groups: []entities.ProductGroup{}}
	failed := 0

	for _, o := range outcomes {
		if o.err != nil {
			failed++
			s.groupFailures.Add(ctx, 1)
			log.Ctx(ctx).Warn().Err(o.err).Str("group", o.value.Title).Msg("grouped search request failed")
			continue
		}
		if o.result == nil || len(o.result.Items) == 0 {
			continue
		}

		name := o.result.Items[0].Attribute(s.opts.Grouping.GroupBy)
		if name == "" {
			name = o.value.Title
		}
		groups.Put(entities.ProductGroup{
			Name:       name,
			Value:      o.value.Title,
			TotalCount: o.result.TotalCount,
			Items:      o.result.Items,
		})
	}
	return groups, failed
}

func (s *ProductSearchService) publish(query entities.SearchQuery, primary *entities.ProductSearchResult) *ListingResult {
	totalPages := primary.TotalPages()
	result := &ListingResult{
		Items:                 primary.Items,
		Facets:                primary.Facets,
		TotalCount:            primary.TotalCount,
		TotalPages:            totalPages,
		CurrentPage:           query.CurrentPage,
		PageSize:              query.PageSize,
		PageSizeOptions:       PageSizeOptions(s.opts.PageSizeOptions, s.opts.AllowAllProducts, s.opts.ShowAllLabel, primary.TotalCount),
		CategoryNames:         entities.CategoryNames(primary.Facets),
		MinQueryLengthReached: true,
		Query:                 query,
	}
	if result.Items == nil {
		result.Items = []entities.Product{}
	}
	if result.Facets == nil {
		result.Facets = []entities.Facet{}
	}

	if primary.TotalCount > 0 && totalPages == 1 && result.CurrentPage != 1 {
		result.CurrentPage = 1
		result.PageCorrected = true
	}
	return result
}

func (s *ProductSearchService) emptyResult(req ListingRequest) *ListingResult {
	pageSize := req.State.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ListingResult{
		Items:                 []entities.Product{},
		Facets:                []entities.Facet{},
		TotalCount:            0,
		TotalPages:            1,
		CurrentPage:           max(req.State.CurrentPage, 1),
		PageSize:              pageSize,
		PageSizeOptions:       PageSizeOptions(s.opts.PageSizeOptions, s.opts.AllowAllProducts, s.opts.ShowAllLabel, 0),
		MinQueryLengthReached: false,
	}
}

func (s *ProductSearchService) toRequest(query entities.SearchQuery, categoryActive bool) entities.ProductSearchRequest {
	filters := entities.CloneFilters(query.Filters)

	visibility := visibilitySearch
	if categoryActive {
		visibility = visibilityCategory
	}
	filters = append(filters, entities.FacetFilter{
		Attribute: entities.AttributeVisibility,
		In:        append([]string(nil), visibility...),
	})
	if !query.DisplayOutOfStock {
		filters = append(filters, entities.FacetFilter{Attribute: entities.AttributeInStock, Eq: "true"})
	}

	qc := query.Context
	return entities.ProductSearchRequest{
		Phrase:      query.Phrase,
		Filter:      filters,
		Sort:        entities.ParseSort(query.Sort),
		Context:     &qc,
		PageSize:    query.PageSize,
		CurrentPage: query.CurrentPage,
	}
}

func (s *ProductSearchService) filterIgnored(values []entities.GroupValue) []entities.GroupValue {
	ignore := make(map[string]bool, len(s.opts.Grouping.Ignore))
	for _, v := range s.opts.Grouping.Ignore {
		ignore[v] = true
	}
	out := make([]entities.GroupValue, 0, len(values))
	for _, v := range values {
		if v.Title == "" || ignore[v.Title] {
			continue
		}
		out = append(out, v)
	}
	return out
}

func facetGroupValues(facets []entities.Facet, groupBy string) []entities.GroupValue {
	facet, ok := entities.FindFacet(facets, groupBy)
	if !ok {
		return nil
	}
	values := make([]entities.GroupValue, 0, len(facet.Buckets))
	for _, b := range facet.Buckets {
		values = append(values, entities.GroupValue{ID: b.ID, Title: b.Title})
	}
	return values
}
