package resolvers

import (
	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

func listingMap(view *services.ListingView) map[string]interface{} {
	m := map[string]interface{}{
		"phrase":          view.Phrase,
		"sort":            view.Sort,
		"sortOptions":     view.SortOptions,
		"selectedFilters": view.SelectedFilters,
		"filterCount":     view.FilterCount,
		"pagination":      view.Pagination,
		"categoryName":    view.CategoryName,
		"url":             view.URL,
		"items":           []map[string]interface{}{},
		"facets":          []map[string]interface{}{},
	}
	result := view.ListingResult
	if result == nil {
		return m
	}

	m["totalCount"] = result.TotalCount
	m["totalPages"] = result.TotalPages
	m["currentPage"] = result.CurrentPage
	m["pageSize"] = result.PageSize
	m["pageSizeOptions"] = result.PageSizeOptions
	m["minQueryLengthReached"] = result.MinQueryLengthReached
	m["items"] = productMaps(result.Items)

	facets := make([]map[string]interface{}, 0, len(result.Facets))
	for _, f := range result.Facets {
		facets = append(facets, facetMap(f))
	}
	m["facets"] = facets

	if result.Groups != nil {
		groups := make([]map[string]interface{}, 0, len(result.Groups.Groups))
		for _, g := range result.Groups.Groups {
			groups = append(groups, map[string]interface{}{
				"name":        g.Name,
				"value":       g.Value,
				"totalCount":  g.TotalCount,
				"viewMoreUrl": g.ViewMoreURL,
				"items":       productMaps(g.Items),
			})
		}
		m["groups"] = groups
	}
	return m
}

func productMaps(items []entities.Product) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(items))
	for _, p := range items {
		out = append(out, productMap(p))
	}
	return out
}

func productMap(p entities.Product) map[string]interface{} {
	url := p.ProductView.URL
	if url == "" {
		url = p.Product.CanonicalURL
	}

	image := ""
	if len(p.ProductView.Images) > 0 {
		image = p.ProductView.Images[0].URL
	} else if p.Product.SmallImage != nil {
		image = p.Product.SmallImage.URL
	}

	minimum := p.Product.PriceRange.Minimum
	return map[string]interface{}{
		"sku":          p.SKU(),
		"name":         p.Name(),
		"productType":  p.Product.Typename,
		"url":          url,
		"urlKey":       p.ProductView.URLKey,
		"inStock":      p.ProductView.InStock,
		"imageUrl":     image,
		"price":        moneyMap(minimum.Final),
		"regularPrice": moneyMap(minimum.Regular),
	}
}

func moneyMap(m entities.Money) map[string]interface{} {
	return map[string]interface{}{"value": m.Value, "currency": m.Currency}
}

func facetMap(f entities.Facet) map[string]interface{} {
	buckets := make([]map[string]interface{}, 0, len(f.Buckets))
	for _, b := range f.Buckets {
		buckets = append(buckets, map[string]interface{}{
			"type":  string(b.Type),
			"title": b.Title,
			"count": b.Count,
			"id":    b.ID,
			"name":  b.Name,
			"path":  b.Path,
			"from":  b.From,
			"to":    b.To,
			"min":   b.Min,
			"max":   b.Max,
		})
	}
	return map[string]interface{}{
		"attribute": f.Attribute,
		"title":     f.Title,
		"type":      f.Type,
		"buckets":   buckets,
	}
}

func categoryMap(c entities.Category) map[string]interface{} {
	return map[string]interface{}{
		"id":       c.ID,
		"name":     c.Name,
		"urlPath":  c.URLPath,
		"urlKey":   c.URLKey,
		"parentId": c.ParentID,
		"level":    c.Level,
		"childIds": append([]string(nil), c.Children...),
	}
}

func outcomeMap(o *entities.AddToCartOutcome) map[string]interface{} {
	return map[string]interface{}{
		"success":     o.Success,
		"message":     o.Message,
		"redirectUrl": o.RedirectURL,
		"cartId":      o.CartID,
		"itemCount":   o.ItemCount,
	}
}
