package search

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
	tsclient "github.com/zatekoja/livesearch-plp/internal/infrastructure/clients/typesense"
	apperrors "github.com/zatekoja/livesearch-plp/pkg/errors"
)

const (
	defaultPerPage = 24
	maxPerPage     = 250
	maxFacetValues = 50
)

// TypesenseAdapter serves listing searches from, and indexes products into,
// the Typesense products collection.
type TypesenseAdapter struct {
	client      *tsclient.Client
	facetFields []string
	now         func() time.Time
}

// Ensure TypesenseAdapter implements the search ports
var (
	_ providers.ProductSearcher = (*TypesenseAdapter)(nil)
	_ providers.ProductIndex    = (*TypesenseAdapter)(nil)
)

// NewTypesenseAdapter creates a Typesense adapter. facetAttributes are the
// shopper-filterable attribute codes returned as facets, in order.
func NewTypesenseAdapter(client *tsclient.Client, facetAttributes []string) *TypesenseAdapter {
	fields := []string{"category_paths", "price"}
	for _, attr := range facetAttributes {
		if f := fieldFor(attr); f != "category_paths" && f != "price" {
			fields = append(fields, f)
		}
	}
	return &TypesenseAdapter{client: client, facetFields: fields, now: time.Now}
}

// IndexProducts upserts products and returns how many were written.
// Individual failures are logged and skipped.
func (a *TypesenseAdapter) IndexProducts(ctx context.Context, products []entities.IndexedProduct) (int, error) {
	documents := a.client.Client().Collection(a.client.Collection()).Documents()
	now := a.now()

	indexed := 0
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}
		doc, err := ProductDocument(p, now)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("skipping product")
			continue
		}
		if _, err := documents.Upsert(ctx, doc); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("sku", p.Product.SKU()).Msg("failed to index product")
			continue
		}
		indexed++
	}

	if indexed == 0 && len(products) > 0 {
		return 0, fmt.Errorf("failed to index any of %d products", len(products))
	}
	return indexed, nil
}

// SearchProducts runs one listing request against the collection
func (a *TypesenseAdapter) SearchProducts(ctx context.Context, req entities.ProductSearchRequest) (*entities.ProductSearchResult, error) {
	perPage := req.PageSize
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	page := req.CurrentPage
	if page < 1 {
		page = 1
	}

	q := strings.TrimSpace(req.Phrase)
	if q == "" {
		q = "*"
	}

	params := &api.SearchCollectionParams{
		Q:              pointer.String(q),
		QueryBy:        pointer.String("name,sku"),
		FacetBy:        pointer.String(strings.Join(a.facetFields, ",")),
		MaxFacetValues: pointer.Int(maxFacetValues),
		Page:           pointer.Int(page),
		PerPage:        pointer.Int(perPage),
	}
	if filterBy := FilterBy(req.Filter); filterBy != "" {
		params.FilterBy = pointer.String(filterBy)
	}
	if sortBy := SortBy(req.Sort); sortBy != "" {
		params.SortBy = pointer.String(sortBy)
	}

	result, err := a.client.Client().Collection(a.client.Collection()).Documents().Search(ctx, params)
	if err != nil {
		return nil, apperrors.NewExternalError("typesense search failed", err)
	}

	out := &entities.ProductSearchResult{
		Items:  []entities.Product{},
		Facets: []entities.Facet{},
	}
	if result.Found != nil {
		out.TotalCount = *result.Found
	}
	out.PageInfo = entities.PageInfo{
		CurrentPage: page,
		PageSize:    perPage,
		TotalPages:  totalPages(out.TotalCount, perPage),
	}

	if result.Hits != nil {
		for _, hit := range *result.Hits {
			if hit.Document == nil {
				continue
			}
			product, ok := decodeHit(*hit.Document)
			if !ok {
				log.Ctx(ctx).Warn().Interface("id", (*hit.Document)["id"]).Msg("skipping undecodable search hit")
				continue
			}
			out.Items = append(out.Items, product)
		}
	}

	if result.FacetCounts != nil {
		for _, fc := range *result.FacetCounts {
			if facet, ok := toFacet(fc); ok {
				out.Facets = append(out.Facets, facet)
			}
		}
	}
	return out, nil
}

func decodeHit(doc map[string]interface{}) (entities.Product, bool) {
	raw, ok := doc["product_json"].(string)
	if !ok || raw == "" {
		return entities.Product{}, false
	}
	var product entities.Product
	if err := json.Unmarshal([]byte(raw), &product); err != nil {
		return entities.Product{}, false
	}
	return product, true
}

func toFacet(fc api.FacetCounts) (entities.Facet, bool) {
	if fc.FieldName == nil {
		return entities.Facet{}, false
	}
	field := *fc.FieldName
	facet := entities.Facet{
		Attribute: attributeFor(field),
		Title:     attributeFor(field),
		Buckets:   []entities.Bucket{},
	}

	if field == "price" {
		if fc.Stats == nil || fc.Stats.Min == nil || fc.Stats.Max == nil {
			return entities.Facet{}, false
		}
		facet.Title = "Price"
		facet.Buckets = append(facet.Buckets, entities.Bucket{
			Type:  entities.BucketTypeStats,
			Title: "price",
			Min:   *fc.Stats.Min,
			Max:   *fc.Stats.Max,
		})
		return facet, true
	}

	if fc.Counts == nil || len(*fc.Counts) == 0 {
		return entities.Facet{}, false
	}
	for _, c := range *fc.Counts {
		if c.Value == nil {
			continue
		}
		count := 0
		if c.Count != nil {
			count = *c.Count
		}
		bucket := entities.Bucket{Type: entities.BucketTypeScalar, Title: *c.Value, ID: *c.Value, Count: count}
		if field == "category_paths" {
			bucket = entities.Bucket{
				Type:  entities.BucketTypeCategoryView,
				Title: *c.Value,
				Name:  path.Base(*c.Value),
				Path:  *c.Value,
				Count: count,
			}
		}
		facet.Buckets = append(facet.Buckets, bucket)
	}
	return facet, true
}
