// Package cli implements plpctl, an operator tool that runs listing
// searches and category lookups against a catalog service and validates
// store details files.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/application/storefront"
	"github.com/zatekoja/livesearch-plp/internal/bootstrap"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/pkg/config"
)

const envPrefix = "PLPCTL"

// app carries the per-invocation configuration shared by subcommands
type app struct {
	v       *viper.Viper
	cfgFile string
	out     io.Writer
}

// NewRootCommand builds the plpctl command tree writing to out
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out}

	root := &cobra.Command{
		Use:           "plpctl",
		Short:         "Query and validate storefront product listings",
		Long:          `plpctl runs product listing searches and category lookups against a catalog service and validates store details files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default ~/.config/plpctl/config.yaml)")
	flags.String("api-url", "", "catalog service GraphQL URL")
	flags.String("api-key", "", "catalog service API key")
	flags.String("store-view", "", "store view code")
	flags.String("store-details", "", "store details YAML or JSON file")
	flags.StringP("output", "o", "table", "output format: table, json")
	flags.Duration("timeout", 0, "catalog request timeout")

	_ = a.v.BindPFlag("catalog.api_url", flags.Lookup("api-url"))
	_ = a.v.BindPFlag("catalog.api_key", flags.Lookup("api-key"))
	_ = a.v.BindPFlag("catalog.timeout", flags.Lookup("timeout"))
	_ = a.v.BindPFlag("store.store_view_code", flags.Lookup("store-view"))
	_ = a.v.BindPFlag("store.details_file", flags.Lookup("store-details"))
	_ = a.v.BindPFlag("output", flags.Lookup("output"))

	root.AddCommand(a.searchCommand())
	root.AddCommand(a.categoriesCommand())
	root.AddCommand(a.validateCommand())
	return root
}

// Execute runs plpctl with the process arguments
func Execute() error {
	return NewRootCommand(os.Stdout).Execute()
}

func (a *app) initConfig() error {
	v := a.v
	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "plpctl"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("catalog.timeout", 10*time.Second)
	v.SetDefault("store.website_code", "base")
	v.SetDefault("store.store_code", "main_website_store")
	v.SetDefault("store.store_view_code", "default")
	v.SetDefault("store.locale", "en_US")
	v.SetDefault("store.page_size", 24)
	v.SetDefault("store.min_query_length", services.DefaultMinQueryLength)
	v.SetDefault("categories.root_ids", []string{"3"})
	v.SetDefault("categories.roles", []string{"active"})
	v.SetDefault("categories.depth", 4)
	v.SetDefault("categories.start_level", 1)
	v.SetDefault("output", "table")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func (a *app) catalogConfig() config.CatalogConfig {
	return config.CatalogConfig{
		APIURL:           a.v.GetString("catalog.api_url"),
		APIKey:           a.v.GetString("catalog.api_key"),
		EnvironmentID:    a.v.GetString("store.environment_id"),
		WebsiteCode:      a.v.GetString("store.website_code"),
		StoreCode:        a.v.GetString("store.store_code"),
		StoreViewCode:    a.v.GetString("store.store_view_code"),
		CustomerGroup:    a.v.GetString("store.customer_group"),
		Timeout:          a.v.GetDuration("catalog.timeout"),
		CategoryRootIDs:  a.v.GetStringSlice("categories.root_ids"),
		CategoryRoles:    a.v.GetStringSlice("categories.roles"),
		CategoryDepth:    a.v.GetInt("categories.depth"),
		CategoryStartLvl: a.v.GetInt("categories.start_level"),
	}
}

func (a *app) defaults() storefront.Defaults {
	c := a.catalogConfig()
	return storefront.Defaults{
		APIURL:           c.APIURL,
		EnvironmentID:    c.EnvironmentID,
		WebsiteCode:      c.WebsiteCode,
		StoreCode:        c.StoreCode,
		StoreViewCode:    c.StoreViewCode,
		CustomerGroup:    c.CustomerGroup,
		PageSize:         a.v.GetInt("store.page_size"),
		PageSizeOptions:  "12,24,36",
		MinQueryLength:   a.v.GetInt("store.min_query_length"),
		Locale:           a.v.GetString("store.locale"),
		SearchQueryParam: services.ParamPhrase,
		Grouping:         entities.GroupConfig{Source: services.GroupSourceFacet},
	}
}

// loadStore reads the configured store details, or starts from an empty
// set, and fills the gaps from configuration.
func (a *app) loadStore(ctx context.Context) (*entities.StoreDetails, error) {
	raw := map[string]interface{}{}
	if path := a.v.GetString("store.details_file"); path != "" {
		var err error
		if raw, err = storefront.LoadStoreDetailsFile(path); err != nil {
			return nil, err
		}
	}
	store, err := storefront.ValidateStoreDetails(ctx, raw)
	if err != nil {
		return nil, err
	}
	storefront.ApplyDefaults(store, a.defaults())
	if store.APIKey == "" {
		store.APIKey = a.v.GetString("catalog.api_key")
	}
	if store.APIURL == "" {
		return nil, fmt.Errorf("catalog API URL is not configured; use --api-url or %s_CATALOG_API_URL", envPrefix)
	}
	return store, nil
}

func (a *app) mounter() *storefront.Mounter {
	backends := bootstrap.NewBackends(a.catalogConfig(), nil, nil, nil)
	return storefront.NewMounter(a.defaults(), backends.Backend, nil, nil, 4)
}

func (a *app) output() string {
	return a.v.GetString("output")
}
