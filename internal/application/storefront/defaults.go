package storefront

import (
	"strings"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

// DefaultHeaderViews are shown when the host does not choose any
var DefaultHeaderViews = []string{"search", "sort"}

// Defaults fill store details the host left empty
type Defaults struct {
	APIURL        string
	TestAPIURL    string
	SandboxAPIKey string
	CommerceURL   string

	EnvironmentID string
	WebsiteCode   string
	StoreCode     string
	StoreViewCode string
	CustomerGroup string

	PageSize          int
	PageSizeOptions   string
	MinQueryLength    int
	DisplayOutOfStock bool
	AllowAllProducts  bool
	Locale            string
	SearchQueryParam  string
	RouteTemplate     string
	CurrencySymbol    string
	CurrencyRate      string
	Grouping          entities.GroupConfig
}

// ApplyDefaults fills empty fields of store from d
func ApplyDefaults(store *entities.StoreDetails, d Defaults) {
	setString(&store.EnvironmentID, d.EnvironmentID)
	setString(&store.WebsiteCode, d.WebsiteCode)
	setString(&store.StoreCode, d.StoreCode)
	setString(&store.StoreViewCode, d.StoreViewCode)
	setString(&store.CommerceURL, d.CommerceURL)

	if strings.EqualFold(store.EnvironmentType, entities.EnvironmentTesting) {
		store.APIURL = d.TestAPIURL
		setString(&store.APIKey, d.SandboxAPIKey)
	} else {
		setString(&store.APIURL, d.APIURL)
	}

	if store.Context.UserViewHistory == nil {
		store.Context.UserViewHistory = []entities.ViewHistoryEntry{}
	}
	setString(&store.Context.CustomerGroup, d.CustomerGroup)

	cfg := &store.Config
	if cfg.HeaderViews == nil {
		cfg.HeaderViews = append([]string(nil), DefaultHeaderViews...)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = cfg.PerPageConfig.DefaultPageSizeOption
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = d.PageSize
	}
	setString(&cfg.PerPageConfig.PageSizeOptions, d.PageSizeOptions)
	if cfg.MinQueryLength <= 0 {
		cfg.MinQueryLength = d.MinQueryLength
	}
	if cfg.DisplayOutOfStock == "" && d.DisplayOutOfStock {
		cfg.DisplayOutOfStock = "1"
	}
	if cfg.AllowAllProducts == "" && d.AllowAllProducts {
		cfg.AllowAllProducts = "1"
	}
	setString(&cfg.Locale, d.Locale)
	setString(&cfg.SearchQuery, d.SearchQueryParam)
	setString(&cfg.RouteTemplate, d.RouteTemplate)
	setString(&cfg.CurrencySymbol, d.CurrencySymbol)
	setString(&cfg.CurrencyRate, d.CurrencyRate)

	g := &cfg.GroupConfig
	setString(&g.GroupBy, d.Grouping.GroupBy)
	setString(&g.Source, d.Grouping.Source)
	if g.Size <= 0 {
		g.Size = d.Grouping.Size
	}
	if g.Ignore == nil {
		g.Ignore = d.Grouping.Ignore
	}
	if g.Lookup == nil {
		g.Lookup = d.Grouping.Lookup
	}
}

// AllowAllProducts reports whether the "show all" page size is offered
func AllowAllProducts(store *entities.StoreDetails) bool {
	v := store.Config.AllowAllProducts
	return v == "1" || v == "true"
}

func setString(dst *string, fallback string) {
	if *dst == "" {
		*dst = fallback
	}
}
