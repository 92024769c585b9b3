package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Typesense  TypesenseConfig
	OTEL       OTELConfig
	Logging    LoggingConfig
	Catalog    CatalogConfig
	Storefront StorefrontConfig
	Grouping   GroupingConfig
	Search     SearchConfig
	Analytics  AnalyticsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host        string
	Port        int
	GraphQLPort int
	StreamPort  int
	Environment string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL        string
	APIKey     string
	Collection string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// LoggingConfig controls zerolog output and optional file rotation
type LoggingConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// CatalogConfig describes the commerce catalog service and the commerce
// GraphQL endpoint used for cart mutations.
type CatalogConfig struct {
	APIURL           string
	APIKey           string
	TestAPIURL       string
	SandboxAPIKey    string
	CommerceURL      string
	EnvironmentID    string
	EnvironmentType  string
	WebsiteCode      string
	StoreCode        string
	StoreViewCode    string
	CustomerGroup    string
	Timeout          time.Duration
	CategoryRootIDs  []string
	CategoryRoles    []string
	CategoryDepth    int
	CategoryStartLvl int
}

// StorefrontConfig holds the per-store widget defaults
type StorefrontConfig struct {
	StoreDetailsFile  string
	PageSize          int
	PageSizeOptions   string
	MinQueryLength    int
	AllowAllProducts  bool
	DisplayOutOfStock bool
	Locale            string
	SearchQueryParam  string
	RouteTemplate     string
	CurrencySymbol    string
	CurrencyRate      string
}

// GroupingConfig controls grouped listing requests
type GroupingConfig struct {
	GroupBy     string
	Source      string
	Size        int
	Ignore      []string
	LookupFile  string
	MaxParallel int
}

// SearchConfig selects the product search backend
type SearchConfig struct {
	Backend         string
	FacetAttributes []string
}

// AnalyticsConfig controls the PostgreSQL search analytics store
type AnalyticsConfig struct {
	Enabled bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			GraphQLPort: getEnvAsInt("GRAPHQL_PORT", 8081),
			StreamPort:  getEnvAsInt("STREAM_PORT", 8082),
			Environment: getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "livesearch_plp"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:        getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey:     getEnv("TYPESENSE_API_KEY", "xyz"),
			Collection: getEnv("TYPESENSE_COLLECTION", "products"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "livesearch-plp"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 5),
		},
		Catalog: CatalogConfig{
			APIURL:           getEnv("CATALOG_API_URL", "https://catalog-service.adobe.io/graphql"),
			APIKey:           getEnv("CATALOG_API_KEY", ""),
			TestAPIURL:       getEnv("CATALOG_TEST_API_URL", "https://catalog-service-sandbox.adobe.io/graphql"),
			SandboxAPIKey:    getEnv("CATALOG_SANDBOX_API_KEY", ""),
			CommerceURL:      getEnv("COMMERCE_GRAPHQL_URL", ""),
			EnvironmentID:    getEnv("CATALOG_ENVIRONMENT_ID", ""),
			EnvironmentType:  getEnv("CATALOG_ENVIRONMENT_TYPE", ""),
			WebsiteCode:      getEnv("CATALOG_WEBSITE_CODE", "base"),
			StoreCode:        getEnv("CATALOG_STORE_CODE", "main_website_store"),
			StoreViewCode:    getEnv("CATALOG_STORE_VIEW_CODE", "default"),
			CustomerGroup:    getEnv("CATALOG_CUSTOMER_GROUP", ""),
			Timeout:          getEnvAsDuration("CATALOG_TIMEOUT", 10*time.Second),
			CategoryRootIDs:  getEnvAsList("CATALOG_CATEGORY_ROOT_IDS", []string{"3"}),
			CategoryRoles:    getEnvAsList("CATALOG_CATEGORY_ROLES", []string{"active"}),
			CategoryDepth:    getEnvAsInt("CATALOG_CATEGORY_DEPTH", 4),
			CategoryStartLvl: getEnvAsInt("CATALOG_CATEGORY_START_LEVEL", 1),
		},
		Storefront: StorefrontConfig{
			StoreDetailsFile:  getEnv("STORE_DETAILS_FILE", ""),
			PageSize:          getEnvAsInt("PLP_PAGE_SIZE", 24),
			PageSizeOptions:   getEnv("PLP_PAGE_SIZE_OPTIONS", "12,24,36"),
			MinQueryLength:    getEnvAsInt("PLP_MIN_QUERY_LENGTH", 3),
			AllowAllProducts:  getEnvAsBool("PLP_ALLOW_ALL_PRODUCTS", false),
			DisplayOutOfStock: getEnvAsBool("PLP_DISPLAY_OUT_OF_STOCK", true),
			Locale:            getEnv("PLP_LOCALE", "en_US"),
			SearchQueryParam:  getEnv("PLP_SEARCH_QUERY_PARAM", "q"),
			RouteTemplate:     getEnv("PLP_PRODUCT_ROUTE", ""),
			CurrencySymbol:    getEnv("PLP_CURRENCY_SYMBOL", "$"),
			CurrencyRate:      getEnv("PLP_CURRENCY_RATE", "1"),
		},
		Grouping: GroupingConfig{
			GroupBy:     getEnv("PLP_GROUP_BY", ""),
			Source:      getEnv("PLP_GROUP_SOURCE", "facet"),
			Size:        getEnvAsInt("PLP_GROUP_SIZE", 3),
			Ignore:      getEnvAsList("PLP_GROUP_IGNORE", nil),
			LookupFile:  getEnv("PLP_GROUP_LOOKUP_FILE", ""),
			MaxParallel: getEnvAsInt("PLP_GROUP_MAX_PARALLEL", 8),
		},
		Search: SearchConfig{
			Backend:         getEnv("SEARCH_BACKEND", "catalog"),
			FacetAttributes: getEnvAsList("SEARCH_FACET_ATTRIBUTES", []string{"categories", "price"}),
		},
		Analytics: AnalyticsConfig{
			Enabled: getEnvAsBool("ANALYTICS_ENABLED", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Grouping.Source {
	case "facet", "lookup":
	default:
		return fmt.Errorf("PLP_GROUP_SOURCE must be facet or lookup, got %q", c.Grouping.Source)
	}
	switch c.Search.Backend {
	case "catalog", "typesense":
	default:
		return fmt.Errorf("SEARCH_BACKEND must be catalog or typesense, got %q", c.Search.Backend)
	}
	if c.Storefront.PageSize <= 0 {
		return fmt.Errorf("PLP_PAGE_SIZE must be positive, got %d", c.Storefront.PageSize)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Addr returns the HTTP listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GraphQLAddr returns the GraphQL server listen address
func (c *ServerConfig) GraphQLAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.GraphQLPort)
}

// StreamAddr returns the catalog event stream listen address
func (c *ServerConfig) StreamAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.StreamPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping blank entries
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
