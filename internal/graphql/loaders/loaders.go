package loaders

import (
	"context"
	"fmt"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// Loaders contains all the dataloaders for the application
type Loaders struct {
	CategoryLoader *dataloader.Loader[string, entities.Category]
}

// NewLoaders creates request-scoped loaders. Category children of one query
// level are resolved in a single batch against the loaded forest.
func NewLoaders(categories *services.CategoryService) *Loaders {
	return &Loaders{
		CategoryLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[entities.Category] {
			results := make([]*dataloader.Result[entities.Category], len(keys))
			err := categories.EnsureLoaded(ctx)

			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[entities.Category]{Error: err}
				} else if c, ok := categories.FindByID(key); ok {
					results[i] = &dataloader.Result[entities.Category]{Data: c}
				} else {
					results[i] = &dataloader.Result[entities.Category]{Error: fmt.Errorf("category %s not found", key)}
				}
			}
			return results
		}),
	}
}

// For returns the loaders for a given context, or nil
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}
