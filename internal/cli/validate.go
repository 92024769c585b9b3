package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zatekoja/livesearch-plp/internal/application/storefront"
)

func (a *app) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <store-details>",
		Short: "Validate a store details file and print the result",
		Long: `Validate a store details YAML or JSON file the way the listing service
does when mounting a store: unknown top-level keys are dropped and reported,
string values are sanitized and configured defaults fill the gaps.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).With().Timestamp().Logger()
			ctx := logger.WithContext(cmd.Context())

			raw, err := storefront.LoadStoreDetailsFile(args[0])
			if err != nil {
				return err
			}
			store, err := storefront.ValidateStoreDetails(ctx, raw)
			if err != nil {
				return err
			}
			storefront.ApplyDefaults(store, a.defaults())
			if store.APIKey != "" {
				store.APIKey = "********"
			}

			if a.output() == outputJSON {
				return a.writeJSON(store)
			}
			enc := yaml.NewEncoder(a.out)
			enc.SetIndent(2)
			if err := enc.Encode(store); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
