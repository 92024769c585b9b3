package storefront

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
	"github.com/zatekoja/livesearch-plp/internal/i18n"
	apperrors "github.com/zatekoja/livesearch-plp/pkg/errors"
)

// MountOptions are the inputs of one listing mount
type MountOptions struct {
	StoreDetails map[string]interface{}
	// Root names the element the listing renders into
	Root string
	// PageURL is the page the listing is mounted on; its query carries the
	// initial state.
	PageURL *url.URL
}

// Backend is the set of catalog adapters one store talks to
type Backend struct {
	Searcher   providers.ProductSearcher
	Categories *services.CategoryService
	Metadata   providers.AttributeMetadataProvider
}

// BackendFactory builds the adapters for validated store details
type BackendFactory func(ctx context.Context, store *entities.StoreDetails) (*Backend, error)

// Mounter creates listing sessions
type Mounter struct {
	defaults    Defaults
	backends    BackendFactory
	analytics   *services.SearchAnalyticsService
	flags       *services.FeatureFlags
	maxParallel int
}

// NewMounter creates a mounter. analytics may be nil.
func NewMounter(defaults Defaults, backends BackendFactory, analytics *services.SearchAnalyticsService, flags *services.FeatureFlags, maxParallel int) *Mounter {
	if flags == nil {
		flags = services.NewFeatureFlags()
	}
	return &Mounter{
		defaults:    defaults,
		backends:    backends,
		analytics:   analytics,
		flags:       flags,
		maxParallel: maxParallel,
	}
}

// Prepare validates raw store details and fills defaults
func (m *Mounter) Prepare(ctx context.Context, raw map[string]interface{}) (*entities.StoreDetails, error) {
	store, err := ValidateStoreDetails(ctx, raw)
	if err != nil {
		return nil, err
	}
	ApplyDefaults(store, m.defaults)
	return store, nil
}

// Mount validates opts and returns an initialised listing session. The
// first search is left to the caller.
func (m *Mounter) Mount(ctx context.Context, opts MountOptions) (*services.ListingSession, error) {
	if opts.StoreDetails == nil {
		return nil, apperrors.NewValidationError("store details were not provided")
	}
	if strings.TrimSpace(opts.Root) == "" {
		return nil, apperrors.NewValidationError("root was not provided")
	}

	store, err := m.Prepare(ctx, opts.StoreDetails)
	if err != nil {
		return nil, err
	}
	return m.MountStore(ctx, store, opts.PageURL)
}

// MountStore creates a session for already validated store details
func (m *Mounter) MountStore(ctx context.Context, store *entities.StoreDetails, pageURL *url.URL) (*services.ListingSession, error) {
	backend, err := m.backends(ctx, store)
	if err != nil {
		return nil, err
	}
	if backend == nil || backend.Searcher == nil {
		return nil, apperrors.NewInternalError("no product searcher configured", nil)
	}

	tr := i18n.Get(store.Config.Locale)
	search := services.NewProductSearchService(backend.Searcher, m.ListingOptions(store, tr))

	var base *url.URL
	var values url.Values
	if pageURL != nil {
		cp := *pageURL
		base = &cp
		values = pageURL.Query()
	}

	session := services.NewListingSession(*store, base, services.SessionDeps{
		Search:     search,
		Categories: backend.Categories,
		Metadata:   backend.Metadata,
		Analytics:  m.analytics,
		Translator: tr,
		Flags:      m.flags,
	})
	session.Init(ctx, values)

	log.Ctx(ctx).Info().
		Str("session_id", session.ID()).
		Str("store_view", store.StoreViewCode).
		Str("category", store.Config.CurrentCategoryURLPath).
		Msg("listing mounted")
	return session, nil
}

// ListingOptions derives search options from store details
func (m *Mounter) ListingOptions(store *entities.StoreDetails, tr services.Translator) services.ListingOptions {
	return services.ListingOptions{
		MinQueryLength:   store.Config.MinQueryLength,
		PageSizeOptions:  store.Config.PerPageConfig.PageSizeOptions,
		AllowAllProducts: AllowAllProducts(store),
		ShowAllLabel:     tr.T("ProductContainers.showAll"),
		GroupingEnabled:  m.flags.GroupedListingEnabled(),
		Grouping:         store.Config.GroupConfig,
		MaxParallel:      m.maxParallel,
	}
}

// MountCategory mounts a session for a copy of store placed on the given
// category. An empty categoryPath keeps the store's own category; a
// categoryPath without categoryID clears the configured id.
func (m *Mounter) MountCategory(ctx context.Context, store *entities.StoreDetails, categoryPath, categoryID string, pageURL *url.URL) (*services.ListingSession, error) {
	if store == nil {
		return nil, apperrors.NewValidationError("no default store is configured; mount a listing first")
	}

	cp := *store
	if categoryPath != "" {
		cp.Config.CurrentCategoryURLPath = categoryPath
		cp.Config.CurrentCategoryID = ""
	}
	if categoryID != "" {
		cp.Config.CurrentCategoryID = categoryID
	}
	return m.MountStore(ctx, &cp, pageURL)
}
