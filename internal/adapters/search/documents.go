package search

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

const (
	attrFieldPrefix   = "attr_"
	defaultVisibility = "Catalog, Search"
)

// fieldFor maps a listing filter or sort attribute to its document field
func fieldFor(attribute string) string {
	switch attribute {
	case entities.AttributeCategoryPath, "categories":
		return "category_paths"
	case entities.AttributeCategoryIDs:
		return "category_ids"
	case entities.AttributeVisibility:
		return "visibility"
	case entities.AttributeInStock:
		return "in_stock"
	case "price", "position", "sku", "name":
		return attribute
	default:
		return attrFieldPrefix + attribute
	}
}

// attributeFor is the inverse of fieldFor for faceted fields
func attributeFor(field string) string {
	switch field {
	case "category_paths":
		return "categories"
	case "in_stock":
		return entities.AttributeInStock
	default:
		return strings.TrimPrefix(field, attrFieldPrefix)
	}
}

// ProductDocument flattens an indexed product into a Typesense document.
// The full product is kept in product_json so search hits decode back into
// listing items unchanged.
func ProductDocument(p entities.IndexedProduct, now time.Time) (map[string]interface{}, error) {
	raw, err := json.Marshal(p.Product)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product %s: %w", p.Product.SKU(), err)
	}

	visibility := p.Product.Attribute(entities.AttributeVisibility)
	if visibility == "" {
		visibility = defaultVisibility
	}
	paths := p.CategoryPaths
	if paths == nil {
		paths = []string{}
	}

	minPrice := p.Product.Product.PriceRange.Minimum
	doc := map[string]interface{}{
		"id":             p.Product.SKU(),
		"sku":            p.Product.SKU(),
		"name":           p.Product.Name(),
		"url_key":        p.Product.ProductView.URLKey,
		"canonical_url":  p.Product.Product.CanonicalURL,
		"product_type":   p.Product.Product.Typename,
		"price":          minPrice.Final.Value,
		"regular_price":  minPrice.Regular.Value,
		"currency":       minPrice.Final.Currency,
		"in_stock":       p.Product.ProductView.InStock,
		"visibility":     visibility,
		"category_paths": paths,
		"position":       p.Position,
		"product_json":   string(raw),
		"updated_at":     now.Unix(),
	}
	if len(p.CategoryIDs) > 0 {
		doc["category_ids"] = p.CategoryIDs
	}
	if img := p.Product.Product.SmallImage; img != nil && img.URL != "" {
		doc["image_url"] = img.URL
	}

	for _, attr := range p.Product.ProductView.Attributes {
		if attr.Name == "" || attr.Value == "" || attr.Name == entities.AttributeVisibility {
			continue
		}
		doc[attrFieldPrefix+attr.Name] = []string{attr.Value}
	}
	return doc, nil
}

func quoteValue(v string) string {
	return "`" + strings.ReplaceAll(v, "`", "") + "`"
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FilterBy renders facet filters as a Typesense filter_by expression
func FilterBy(filters []entities.FacetFilter) string {
	clauses := make([]string, 0, len(filters))
	for _, f := range filters {
		field := fieldFor(f.Attribute)
		switch {
		case f.Range != nil && f.Range.To != 0:
			clauses = append(clauses, fmt.Sprintf("%s:[%s..%s]", field, formatNumber(f.Range.From), formatNumber(f.Range.To)))
		case f.Range != nil:
			clauses = append(clauses, fmt.Sprintf("%s:>=%s", field, formatNumber(f.Range.From)))
		case len(f.In) > 0:
			values := make([]string, len(f.In))
			for i, v := range f.In {
				values[i] = quoteValue(v)
			}
			clauses = append(clauses, fmt.Sprintf("%s:=[%s]", field, strings.Join(values, ",")))
		case f.Eq != "" && field == "in_stock":
			clauses = append(clauses, field+":="+strconv.FormatBool(f.Eq == "true"))
		case f.Eq != "":
			clauses = append(clauses, fmt.Sprintf("%s:=%s", field, quoteValue(f.Eq)))
		}
	}
	return strings.Join(clauses, " && ")
}

// SortBy renders backend sort input as a Typesense sort_by expression.
// Relevance maps to the text match score.
func SortBy(sort []entities.SortInput) string {
	parts := make([]string, 0, len(sort))
	for _, s := range sort {
		direction := strings.ToLower(s.Direction)
		if direction != "asc" && direction != "desc" {
			continue
		}
		field := s.Attribute
		switch field {
		case "relevance":
			field = "_text_match"
		case "price", "position":
		default:
			continue
		}
		parts = append(parts, field+":"+direction)
	}
	return strings.Join(parts, ",")
}

// totalPages returns the number of pages for found hits, at least 1
func totalPages(found, perPage int) int {
	if perPage <= 0 || found <= 0 {
		return 1
	}
	return int(math.Ceil(float64(found) / float64(perPage)))
}
