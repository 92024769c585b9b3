package providers

import (
	"context"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

// ProductSearcher runs one productSearch request
type ProductSearcher interface {
	SearchProducts(ctx context.Context, req entities.ProductSearchRequest) (*entities.ProductSearchResult, error)
}

// CategoryProvider fetches the category forest
type CategoryProvider interface {
	FetchCategories(ctx context.Context, query entities.CategoryQuery) ([]entities.Category, error)
}

// AttributeMetadataProvider fetches sortable and filterable attributes
type AttributeMetadataProvider interface {
	FetchAttributeMetadata(ctx context.Context) (*entities.AttributeMetadata, error)
}

// ProductRefiner resolves a configurable product for selected option ids
type ProductRefiner interface {
	RefineProduct(ctx context.Context, optionIDs []string, sku string) (*entities.RefinedProduct, error)
}

// ProductIndex stores listing items in a local search index
type ProductIndex interface {
	IndexProducts(ctx context.Context, products []entities.IndexedProduct) (int, error)
}
