package catalog

import (
	"context"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/clients/commerce"
	apperrors "github.com/zatekoja/livesearch-plp/pkg/errors"
)

// CatalogAdapter reads products, categories and attribute metadata from the
// catalog service GraphQL API.
type CatalogAdapter struct {
	client *commerce.Client
}

var (
	_ providers.ProductSearcher           = (*CatalogAdapter)(nil)
	_ providers.CategoryProvider          = (*CatalogAdapter)(nil)
	_ providers.AttributeMetadataProvider = (*CatalogAdapter)(nil)
	_ providers.ProductRefiner            = (*CatalogAdapter)(nil)
)

// NewCatalogAdapter creates a catalog adapter on top of a configured client
func NewCatalogAdapter(client *commerce.Client) *CatalogAdapter {
	return &CatalogAdapter{client: client}
}

type rangeInput struct {
	From float64  `json:"from"`
	To   *float64 `json:"to,omitempty"`
}

type searchClauseInput struct {
	Attribute string      `json:"attribute"`
	Eq        string      `json:"eq,omitempty"`
	In        []string    `json:"in,omitempty"`
	Range     *rangeInput `json:"range,omitempty"`
}

// searchClauses converts facet filters into backend input. A zero upper
// bound is an open-ended range and is omitted.
func searchClauses(filters []entities.FacetFilter) []searchClauseInput {
	out := make([]searchClauseInput, 0, len(filters))
	for _, f := range filters {
		if f.IsEmpty() {
			continue
		}
		clause := searchClauseInput{Attribute: f.Attribute, Eq: f.Eq, In: f.In}
		if f.Range != nil {
			clause.Range = &rangeInput{From: f.Range.From}
			if f.Range.To != 0 {
				to := f.Range.To
				clause.Range.To = &to
			}
		}
		out = append(out, clause)
	}
	return out
}

// SearchProducts runs one productSearch request
func (a *CatalogAdapter) SearchProducts(ctx context.Context, req entities.ProductSearchRequest) (*entities.ProductSearchResult, error) {
	variables := map[string]interface{}{
		"phrase":      req.Phrase,
		"pageSize":    req.PageSize,
		"currentPage": req.CurrentPage,
		"filter":      searchClauses(req.Filter),
	}
	if len(req.Sort) > 0 {
		variables["sort"] = req.Sort
	}
	if req.Context != nil {
		variables["context"] = req.Context
	}

	var resp struct {
		ProductSearch *entities.ProductSearchResult `json:"productSearch"`
	}
	err := a.client.Query(ctx, commerce.GraphQLRequest{
		Query:         productSearchQuery,
		Variables:     variables,
		OperationName: "productSearch",
	}, &resp)
	if err != nil {
		return nil, apperrors.NewExternalError("product search failed", err)
	}
	if resp.ProductSearch == nil {
		return &entities.ProductSearchResult{}, nil
	}
	return resp.ProductSearch, nil
}

// FetchCategories fetches the category forest
func (a *CatalogAdapter) FetchCategories(ctx context.Context, query entities.CategoryQuery) ([]entities.Category, error) {
	variables := map[string]interface{}{
		"ids":   query.IDs,
		"roles": query.Roles,
	}
	if query.Depth > 0 {
		variables["subtree"] = map[string]int{
			"depth":      query.Depth,
			"startLevel": query.StartLevel,
		}
	}

	var resp struct {
		Categories []entities.Category `json:"categories"`
	}
	err := a.client.Query(ctx, commerce.GraphQLRequest{
		Query:         categoriesQuery,
		Variables:     variables,
		OperationName: "categories",
	}, &resp)
	if err != nil {
		return nil, apperrors.NewExternalError("categories request failed", err)
	}
	return resp.Categories, nil
}

// FetchAttributeMetadata fetches sortable and filterable attributes
func (a *CatalogAdapter) FetchAttributeMetadata(ctx context.Context) (*entities.AttributeMetadata, error) {
	var resp struct {
		AttributeMetadata entities.AttributeMetadata `json:"attributeMetadata"`
	}
	err := a.client.Query(ctx, commerce.GraphQLRequest{
		Query:         attributeMetadataQuery,
		OperationName: "attributeMetadata",
	}, &resp)
	if err != nil {
		return nil, apperrors.NewExternalError("attribute metadata request failed", err)
	}
	return &resp.AttributeMetadata, nil
}

type amount struct {
	Amount entities.Money `json:"amount"`
}

type refinedProductView struct {
	entities.RefinedProduct
	Price *struct {
		Final amount `json:"final"`
	} `json:"price"`
	PriceRange *struct {
		Minimum struct {
			Final amount `json:"final"`
		} `json:"minimum"`
	} `json:"priceRange"`
}

// RefineProduct resolves a configurable product for the selected options
func (a *CatalogAdapter) RefineProduct(ctx context.Context, optionIDs []string, sku string) (*entities.RefinedProduct, error) {
	if optionIDs == nil {
		optionIDs = []string{}
	}

	var resp struct {
		RefineProduct *refinedProductView `json:"refineProduct"`
	}
	err := a.client.Query(ctx, commerce.GraphQLRequest{
		Query:         refineProductQuery,
		Variables:     map[string]interface{}{"optionIds": optionIDs, "sku": sku},
		OperationName: "refineProduct",
	}, &resp)
	if err != nil {
		return nil, apperrors.NewExternalError("refine product request failed", err)
	}
	if resp.RefineProduct == nil {
		return nil, apperrors.NewNotFoundError("product " + sku + " not found")
	}

	product := resp.RefineProduct.RefinedProduct
	switch {
	case resp.RefineProduct.Price != nil:
		price := resp.RefineProduct.Price.Final.Amount
		product.Price = &price
	case resp.RefineProduct.PriceRange != nil:
		price := resp.RefineProduct.PriceRange.Minimum.Final.Amount
		product.Price = &price
	}
	return &product, nil
}
