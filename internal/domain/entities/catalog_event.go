package entities

import "time"

// CatalogEventType identifies what changed in the catalog
type CatalogEventType string

const (
	CatalogEventProductsIndexed  CatalogEventType = "products_indexed"
	CatalogEventCategoriesChange CatalogEventType = "categories_changed"
)

// CatalogEvent is published when the indexer changes catalog data
type CatalogEvent struct {
	ID            string           `json:"id"`
	Type          CatalogEventType `json:"type"`
	StoreViewCode string           `json:"store_view_code"`
	CategoryPaths []string         `json:"category_paths,omitempty"`
	ProductCount  int              `json:"product_count"`
	Timestamp     time.Time        `json:"timestamp"`
}
