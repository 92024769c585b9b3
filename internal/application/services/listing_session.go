package services

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
)

// ErrStaleResult is returned by ListingSession.Search when a newer search
// started before this one finished. The older result is not published.
var ErrStaleResult = errors.New("listing result superseded by a newer search")

// ListingView is everything a renderer needs for one listing
type ListingView struct {
	*ListingResult
	Phrase          string                `json:"phrase"`
	Sort            string                `json:"sort"`
	SortOptions     []entities.SortOption `json:"sort_options"`
	SelectedFilters []SelectedFilter      `json:"selected_filters"`
	FilterCount     int                   `json:"filter_count"`
	Pagination      []string              `json:"pagination"`
	CategoryName    string                `json:"category_name,omitempty"`
	URL             string                `json:"url"`
}

// SessionDeps are the collaborators a listing session is wired with
type SessionDeps struct {
	Search     *ProductSearchService
	Categories *CategoryService
	Metadata   providers.AttributeMetadataProvider
	Analytics  *SearchAnalyticsService
	Translator Translator
	Flags      *FeatureFlags
}

// ListingSession is one mounted listing: it owns the shopper's search state,
// the category context and the last published result.
type ListingSession struct {
	id    string
	deps  SessionDeps
	store entities.StoreDetails
	codec *URLState
	base  *url.URL

	mu         sync.Mutex
	state      SearchState
	metadata   *entities.AttributeMetadata
	view       *ListingView
	generation uint64
	loading    bool

	stale metric.Int64Counter
}

// NewListingSession creates a session for store, rooted at base
func NewListingSession(store entities.StoreDetails, base *url.URL, deps SessionDeps) *ListingSession {
	if deps.Translator == nil {
		deps.Translator = keyTranslator{}
	}
	if base == nil {
		base = &url.URL{Path: "/"}
	}

	pageSize := store.Config.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	codec := NewURLState(store.Config.SearchQuery, pageSize, nil)
	if deps.Search != nil {
		codec = codec.WithFilterable(deps.Search.Options().Grouping.GroupBy)
	}

	stale, _ := otel.Meter("github.com/zatekoja/livesearch-plp/services").Int64Counter(
		"plp.session.stale_results",
		metric.WithDescription("Listing results discarded because a newer search started"),
	)

	return &ListingSession{
		id:    uuid.NewString(),
		deps:  deps,
		store: store,
		codec: codec,
		base:  base,
		state: NewSearchState(pageSize),
		stale: stale,
	}
}

// ID returns the session id
func (s *ListingSession) ID() string {
	return s.id
}

// Store returns the store details the session was mounted with
func (s *ListingSession) Store() entities.StoreDetails {
	return s.store
}

// Init fetches the category tree and attribute metadata, then reads the
// initial state from the page URL. The tree is refetched on every mount so
// new subcategories reach the category filter; a failed fetch keeps the
// previous tree. Category and metadata failures are logged and the listing
// still works without them.
func (s *ListingSession) Init(ctx context.Context, values url.Values) {
	logger := log.Ctx(ctx).With().Str("session_id", s.id).Logger()

	if s.deps.Categories != nil && s.store.Config.CurrentCategoryURLPath != "" {
		if err := s.deps.Categories.Load(ctx); err != nil {
			logger.Warn().Err(err).Msg("category tree unavailable, filtering on the mounted path only")
		}
	}

	var metadata *entities.AttributeMetadata
	if s.deps.Metadata != nil {
		md, err := s.deps.Metadata.FetchAttributeMetadata(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("attribute metadata unavailable")
		} else {
			metadata = md
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata = metadata
	if metadata != nil {
		s.codec = s.codec.WithFilterable(metadata.FilterableAttributes()...)
	}
	if values != nil {
		s.state = s.codec.Decode(values)
	}
}

// State returns the current search state
func (s *ListingSession) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Loading reports whether a search is in flight
func (s *ListingSession) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// View returns the last published listing, or nil before the first search
func (s *ListingSession) View() *ListingView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// URL renders the current state onto the session's base URL
func (s *ListingSession) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codec.URL(s.base, s.state)
}

// Dispatch applies action and runs a search with the new state
func (s *ListingSession) Dispatch(ctx context.Context, actions ...Action) (*ListingView, error) {
	s.mu.Lock()
	for _, a := range actions {
		s.state = Reduce(s.state, a)
	}
	s.mu.Unlock()
	return s.Search(ctx)
}

// Navigate replaces the state with the one encoded in values, as when the
// shopper follows a listing URL, and runs a search.
func (s *ListingSession) Navigate(ctx context.Context, values url.Values) (*ListingView, error) {
	s.mu.Lock()
	s.state = s.codec.Decode(values)
	s.mu.Unlock()
	return s.Search(ctx)
}

// SortOptions returns the sort orders offered for the session's context
func (s *ListingSession) SortOptions() []entities.SortOption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SortOptions(s.deps.Translator, s.metadata, s.store.ShowOutOfStock(), s.store.CategoryActive())
}

// Search fetches the listing for the current state. Only the most recently
// started search may publish; an older one returns ErrStaleResult.
func (s *ListingSession) Search(ctx context.Context) (*ListingView, error) {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	state := s.state
	s.loading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if gen == s.generation {
			s.loading = false
		}
		s.mu.Unlock()
	}()

	start := time.Now()
	req := s.listingRequest(state)
	result, err := s.deps.Search.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation && s.guardStale() {
		s.stale.Add(ctx, 1)
		log.Ctx(ctx).Debug().Str("session_id", s.id).Uint64("generation", gen).Msg("discarding stale listing result")
		return nil, ErrStaleResult
	}

	if result.PageCorrected {
		s.state.CurrentPage = 1
	}
	view := s.buildView(s.state, result)
	s.view = view

	if result.MinQueryLengthReached {
		s.track(ctx, req, result, time.Since(start))
	}
	return view, nil
}

func (s *ListingSession) guardStale() bool {
	return s.deps.Flags == nil || s.deps.Flags.StaleResultGuardEnabled()
}

func (s *ListingSession) listingRequest(state SearchState) ListingRequest {
	cfg := s.store.Config
	req := ListingRequest{
		State:             state,
		Context:           s.store.Context,
		DisplayOutOfStock: s.store.ShowOutOfStock(),
		CategoryPath:      cfg.CurrentCategoryURLPath,
		CategoryID:        cfg.CurrentCategoryID,
	}
	if cfg.CurrentCategoryURLPath != "" {
		if s.deps.Categories != nil {
			req.CategoryURLPaths = s.deps.Categories.ResolveURLPaths(cfg.CurrentCategoryURLPath)
		} else {
			req.CategoryURLPaths = []string{cfg.CurrentCategoryURLPath}
		}
	}
	return req
}

func (s *ListingSession) buildView(state SearchState, result *ListingResult) *ListingView {
	categoryActive := s.store.CategoryActive()

	sort := state.Sort
	if result.Query.Sort != "" {
		sort = result.Query.Sort
	}

	if result.Groups != nil {
		groupBy := s.deps.Search.Options().Grouping.GroupBy
		for i := range result.Groups.Groups {
			g := &result.Groups.Groups[i]
			more := Reduce(state, UpdateFilter{Filter: entities.FacetFilter{Attribute: groupBy, Eq: g.Value}})
			g.ViewMoreURL = s.codec.URL(s.base, more)
		}
	}

	return &ListingView{
		ListingResult: result,
		Phrase:        state.Phrase,
		Sort:          sort,
		SortOptions:   SortOptions(s.deps.Translator, s.metadata, s.store.ShowOutOfStock(), categoryActive),
		SelectedFilters: SelectedFilters(s.deps.Translator, state.Filters, result.CategoryNames, categoryActive, PriceFormat{
			Symbol: s.store.Config.CurrencySymbol,
			Rate:   s.store.Config.CurrencyRate,
		}),
		FilterCount:  state.FilterCount(),
		Pagination:   PaginationRange(result.CurrentPage, result.TotalPages),
		CategoryName: s.store.Config.CategoryName,
		URL:          s.codec.URL(s.base, state),
	}
}

func (s *ListingSession) track(ctx context.Context, req ListingRequest, result *ListingResult, took time.Duration) {
	if s.deps.Analytics == nil || (s.deps.Flags != nil && !s.deps.Flags.SearchAnalyticsEnabled()) {
		return
	}

	count := result.TotalCount
	if result.Groups != nil {
		count = 0
		for _, g := range result.Groups.Groups {
			count += g.TotalCount
		}
	}

	s.deps.Analytics.TrackSearch(ctx, &entities.SearchEvent{
		ID:             uuid.NewString(),
		Phrase:         req.State.Phrase,
		CategoryPath:   req.CategoryPath,
		FilterCount:    req.State.FilterCount(),
		Sort:           result.Query.Sort,
		Grouped:        result.Groups != nil,
		ResultCount:    count,
		FailedRequests: result.FailedRequests,
		LatencyMs:      int(took.Milliseconds()),
		StoreViewCode:  s.store.StoreViewCode,
		SessionID:      s.id,
		CreatedAt:      time.Now().UTC(),
	})
}
