package entities

// Environment types recognised in store details
const (
	EnvironmentTesting    = "testing"
	EnvironmentProduction = "production"
)

// GroupConfig configures grouped listings
type GroupConfig struct {
	GroupBy string       `json:"groupBy" yaml:"groupBy"`
	Source  string       `json:"source" yaml:"source"`
	Size    int          `json:"size" yaml:"size"`
	Ignore  []string     `json:"ignore" yaml:"ignore"`
	Lookup  []GroupValue `json:"lookup,omitempty" yaml:"lookup"`
}

// PerPageConfig configures the page-size selector
type PerPageConfig struct {
	PageSizeOptions       string `json:"pageSizeOptions" yaml:"pageSizeOptions"`
	DefaultPageSizeOption int    `json:"defaultPageSizeOption" yaml:"defaultPageSizeOption"`
}

// StoreConfig is the display configuration of one storefront
type StoreConfig struct {
	MinQueryLength         int           `json:"minQueryLength" yaml:"minQueryLength"`
	PageSize               int           `json:"pageSize" yaml:"pageSize"`
	PerPageConfig          PerPageConfig `json:"perPageConfig" yaml:"perPageConfig"`
	CurrencySymbol         string        `json:"currencySymbol" yaml:"currencySymbol"`
	CurrencyRate           string        `json:"currencyRate" yaml:"currencyRate"`
	DisplayOutOfStock      string        `json:"displayOutOfStock" yaml:"displayOutOfStock"`
	AllowAllProducts       string        `json:"allowAllProducts" yaml:"allowAllProducts"`
	CurrentCategoryURLPath string        `json:"currentCategoryUrlPath" yaml:"currentCategoryUrlPath"`
	CurrentCategoryID      string        `json:"currentCategoryId" yaml:"currentCategoryId"`
	CategoryName           string        `json:"categoryName" yaml:"categoryName"`
	DisplayMode            string        `json:"displayMode" yaml:"displayMode"`
	Locale                 string        `json:"locale" yaml:"locale"`
	SearchQuery            string        `json:"searchQuery" yaml:"searchQuery"`
	HeaderViews            []string      `json:"headerViews" yaml:"headerViews"`
	ListView               bool          `json:"listview" yaml:"listview"`
	RouteTemplate          string        `json:"routeTemplate" yaml:"routeTemplate"`
	GroupConfig            GroupConfig   `json:"groupConfig" yaml:"groupConfig"`
}

// StoreDetails is the validated configuration a listing session is mounted with
type StoreDetails struct {
	EnvironmentID   string       `json:"environmentId" yaml:"environmentId"`
	EnvironmentType string       `json:"environmentType" yaml:"environmentType"`
	WebsiteCode     string       `json:"websiteCode" yaml:"websiteCode"`
	StoreCode       string       `json:"storeCode" yaml:"storeCode"`
	StoreViewCode   string       `json:"storeViewCode" yaml:"storeViewCode"`
	APIURL          string       `json:"apiUrl" yaml:"apiUrl"`
	APIKey          string       `json:"apiKey" yaml:"apiKey"`
	CommerceURL     string       `json:"commerceUrl" yaml:"commerceUrl"`
	Config          StoreConfig  `json:"config" yaml:"config"`
	Context         QueryContext `json:"context" yaml:"context"`
}

// CategoryActive reports whether the store is mounted on a category page
func (s *StoreDetails) CategoryActive() bool {
	return s.Config.CurrentCategoryURLPath != "" || s.Config.CurrentCategoryID != ""
}

// ShowOutOfStock reports whether out-of-stock products are listed
func (s *StoreDetails) ShowOutOfStock() bool {
	return s.Config.DisplayOutOfStock == "1" || s.Config.DisplayOutOfStock == "true"
}
