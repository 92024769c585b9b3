package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
)

const (
	defaultIndexPageSize = 100
	maxIndexPages        = 200
)

// IndexReport summarises one indexing run
type IndexReport struct {
	Categories int
	Collected  int
	Indexed    int
	Failed     []string
}

// CatalogIndexService copies category listings from the catalog service into
// a local product index and announces the change on the event bus.
type CatalogIndexService struct {
	source     providers.ProductSearcher
	categories *CategoryService
	index      providers.ProductIndex
	events     providers.EventBus
	storeView  string
	pageSize   int
}

// NewCatalogIndexService creates an index service. events may be nil.
func NewCatalogIndexService(source providers.ProductSearcher, categories *CategoryService, index providers.ProductIndex, events providers.EventBus, storeView string) *CatalogIndexService {
	return &CatalogIndexService{
		source:     source,
		categories: categories,
		index:      index,
		events:     events,
		storeView:  storeView,
		pageSize:   defaultIndexPageSize,
	}
}

// WithPageSize returns a copy that requests size products per page
func (s *CatalogIndexService) WithPageSize(size int) *CatalogIndexService {
	cp := *s
	if size > 0 {
		cp.pageSize = size
	}
	return &cp
}

// Run collects every product of every known category and writes them to
// the index. A category that fails is recorded and skipped; products keep
// every category they were found under.
func (s *CatalogIndexService) Run(ctx context.Context) (*IndexReport, error) {
	if err := s.categories.Load(ctx); err != nil {
		return nil, err
	}

	report := &IndexReport{}
	bySKU := map[string]*entities.IndexedProduct{}
	var order []string
	var paths []string

	for _, category := range s.categories.Categories() {
		if category.URLPath == "" {
			continue
		}
		report.Categories++
		paths = append(paths, category.URLPath)

		products, err := s.collect(ctx, category.URLPath)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Ctx(ctx).Warn().Err(err).Str("category", category.URLPath).Msg("skipping category")
			report.Failed = append(report.Failed, category.URLPath)
			continue
		}

		for _, product := range products {
			sku := product.SKU()
			entry, ok := bySKU[sku]
			if !ok {
				entry = &entities.IndexedProduct{Product: product, Position: len(order)}
				bySKU[sku] = entry
				order = append(order, sku)
			}
			entry.AddCategory(category.URLPath, category.ID)
		}
	}

	batch := make([]entities.IndexedProduct, 0, len(order))
	for _, sku := range order {
		batch = append(batch, *bySKU[sku])
	}
	report.Collected = len(batch)

	indexed, err := s.index.IndexProducts(ctx, batch)
	report.Indexed = indexed
	if err != nil {
		return report, fmt.Errorf("failed to index products: %w", err)
	}

	s.publish(ctx, paths, indexed)
	return report, nil
}

func (s *CatalogIndexService) collect(ctx context.Context, path string) ([]entities.Product, error) {
	var products []entities.Product
	for page := 1; page <= maxIndexPages; page++ {
		result, err := s.source.SearchProducts(ctx, entities.ProductSearchRequest{
			Filter:      []entities.FacetFilter{{Attribute: entities.AttributeCategoryPath, Eq: path}},
			Sort:        []entities.SortInput{{Attribute: "position", Direction: "ASC"}},
			PageSize:    s.pageSize,
			CurrentPage: page,
		})
		if err != nil {
			return nil, err
		}
		products = append(products, result.Items...)
		if page >= result.TotalPages() || len(result.Items) == 0 {
			break
		}
	}
	return products, nil
}

func (s *CatalogIndexService) publish(ctx context.Context, paths []string, count int) {
	if s.events == nil {
		return
	}
	event := &entities.CatalogEvent{
		ID:            uuid.NewString(),
		Type:          entities.CatalogEventProductsIndexed,
		StoreViewCode: s.storeView,
		CategoryPaths: paths,
		ProductCount:  count,
		Timestamp:     time.Now().UTC(),
	}
	for _, channel := range []string{providers.EventChannelCatalogUpdates, providers.GetStoreChannel(s.storeView)} {
		if err := s.events.Publish(ctx, channel, event); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("channel", channel).Msg("failed to publish catalog event")
		}
	}
}
