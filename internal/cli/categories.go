package cli

import (
	"github.com/spf13/cobra"

	"github.com/zatekoja/livesearch-plp/internal/bootstrap"
)

func (a *app) categoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories [path]",
		Short: "List the category tree, or resolve one category path",
		Long: `Without arguments, list every category the store exposes. With a
URL path, print that category followed by its descendants in the order a
category listing filters on them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.loadStore(ctx)
			if err != nil {
				return err
			}
			backend, err := bootstrap.NewBackends(a.catalogConfig(), nil, nil, nil).Backend(ctx, store)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				if err := backend.Categories.EnsureLoaded(ctx); err != nil {
					return err
				}
				return a.renderCategories(backend.Categories.Categories())
			}

			// the list starts with the category itself
			_, list, err := backend.Categories.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			return a.renderCategories(list)
		},
	}
}
