package resolvers

import (
	"github.com/graphql-go/graphql"

	"github.com/zatekoja/livesearch-plp/internal/graphql/scalars"
)

var moneyType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Money",
	Fields: graphql.Fields{
		"value":    &graphql.Field{Type: graphql.Float},
		"currency": &graphql.Field{Type: graphql.String},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "Product",
	Description: "A listing item",
	Fields: graphql.Fields{
		"sku":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"name":         &graphql.Field{Type: graphql.String},
		"productType":  &graphql.Field{Type: graphql.String},
		"url":          &graphql.Field{Type: graphql.String},
		"urlKey":       &graphql.Field{Type: graphql.String},
		"inStock":      &graphql.Field{Type: graphql.Boolean},
		"imageUrl":     &graphql.Field{Type: graphql.String},
		"price":        &graphql.Field{Type: moneyType},
		"regularPrice": &graphql.Field{Type: moneyType},
	},
})

var bucketType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "Bucket",
	Description: "One option of a facet; which fields are set depends on type",
	Fields: graphql.Fields{
		"type":  &graphql.Field{Type: graphql.String},
		"title": &graphql.Field{Type: graphql.String},
		"count": &graphql.Field{Type: graphql.Int},
		"id":    &graphql.Field{Type: graphql.String},
		"name":  &graphql.Field{Type: graphql.String},
		"path":  &graphql.Field{Type: graphql.String},
		"from":  &graphql.Field{Type: graphql.Float},
		"to":    &graphql.Field{Type: graphql.Float},
		"min":   &graphql.Field{Type: graphql.Float},
		"max":   &graphql.Field{Type: graphql.Float},
	},
})

var facetType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Facet",
	Fields: graphql.Fields{
		"attribute": &graphql.Field{Type: graphql.String},
		"title":     &graphql.Field{Type: graphql.String},
		"type":      &graphql.Field{Type: graphql.String},
		"buckets":   &graphql.Field{Type: graphql.NewList(bucketType)},
	},
})

var groupType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ProductGroup",
	Fields: graphql.Fields{
		"name":        &graphql.Field{Type: graphql.String},
		"value":       &graphql.Field{Type: graphql.String},
		"totalCount":  &graphql.Field{Type: graphql.Int},
		"viewMoreUrl": &graphql.Field{Type: graphql.String},
		"items":       &graphql.Field{Type: graphql.NewList(productType)},
	},
})

var sortOptionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SortOption",
	Fields: graphql.Fields{
		"label": &graphql.Field{Type: graphql.String},
		"value": &graphql.Field{Type: graphql.String},
	},
})

var pageSizeOptionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PageSizeOption",
	Fields: graphql.Fields{
		"label": &graphql.Field{Type: graphql.String},
		"value": &graphql.Field{Type: graphql.Int},
	},
})

var selectedFilterType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SelectedFilter",
	Fields: graphql.Fields{
		"attribute": &graphql.Field{Type: graphql.String},
		"option":    &graphql.Field{Type: graphql.String},
		"label":     &graphql.Field{Type: graphql.String},
	},
})

var listingType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "Listing",
	Description: "One page of a product listing",
	Fields: graphql.Fields{
		"phrase":                &graphql.Field{Type: graphql.String},
		"sort":                  &graphql.Field{Type: graphql.String},
		"totalCount":            &graphql.Field{Type: graphql.Int},
		"totalPages":            &graphql.Field{Type: graphql.Int},
		"currentPage":           &graphql.Field{Type: graphql.Int},
		"pageSize":              &graphql.Field{Type: graphql.Int},
		"minQueryLengthReached": &graphql.Field{Type: graphql.Boolean},
		"items":                 &graphql.Field{Type: graphql.NewList(productType)},
		"facets":                &graphql.Field{Type: graphql.NewList(facetType)},
		"groups":                &graphql.Field{Type: graphql.NewList(groupType)},
		"sortOptions":           &graphql.Field{Type: graphql.NewList(sortOptionType)},
		"pageSizeOptions":       &graphql.Field{Type: graphql.NewList(pageSizeOptionType)},
		"selectedFilters":       &graphql.Field{Type: graphql.NewList(selectedFilterType)},
		"filterCount":           &graphql.Field{Type: graphql.Int},
		"pagination":            &graphql.Field{Type: graphql.NewList(graphql.String)},
		"categoryName":          &graphql.Field{Type: graphql.String},
		"url":                   &graphql.Field{Type: graphql.String},
	},
})

var addToCartResultType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AddToCartResult",
	Fields: graphql.Fields{
		"success":     &graphql.Field{Type: graphql.Boolean},
		"message":     &graphql.Field{Type: graphql.String},
		"redirectUrl": &graphql.Field{Type: graphql.String},
		"cartId":      &graphql.Field{Type: graphql.String},
		"itemCount":   &graphql.Field{Type: graphql.Int},
	},
})

var zeroResultQueryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ZeroResultQuery",
	Fields: graphql.Fields{
		"phrase":   &graphql.Field{Type: graphql.String},
		"searches": &graphql.Field{Type: graphql.Int},
		"lastSeen": &graphql.Field{Type: scalars.DateTime},
	},
})

var filterInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name:        "FilterInput",
	Description: "Set eq, in, or a from/to range",
	Fields: graphql.InputObjectConfigFieldMap{
		"attribute": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"eq":        &graphql.InputObjectFieldConfig{Type: graphql.String},
		"in":        &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.String)},
		"from":      &graphql.InputObjectFieldConfig{Type: graphql.Float},
		"to":        &graphql.InputObjectFieldConfig{Type: graphql.Float},
	},
})

// NewSchema builds the storefront schema resolved by r
func NewSchema(r *Resolver) (graphql.Schema, error) {
	var categoryType *graphql.Object
	categoryType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
				"name":     &graphql.Field{Type: graphql.String},
				"urlPath":  &graphql.Field{Type: graphql.String},
				"urlKey":   &graphql.Field{Type: graphql.String},
				"parentId": &graphql.Field{Type: graphql.ID},
				"level":    &graphql.Field{Type: graphql.Int},
				"urlPaths": &graphql.Field{
					Type:        graphql.NewList(graphql.String),
					Description: "The category and its descendants, depth first; set on Query.category",
				},
				"children": &graphql.Field{
					Type:    graphql.NewList(categoryType),
					Resolve: r.CategoryChildren,
				},
			}
		}),
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"listing": &graphql.Field{
				Type:        listingType,
				Description: "Run a listing for the configured store",
				Args: graphql.FieldConfigArgument{
					"phrase":     &graphql.ArgumentConfig{Type: graphql.String},
					"category":   &graphql.ArgumentConfig{Type: graphql.String, Description: "Category URL path"},
					"categoryId": &graphql.ArgumentConfig{Type: graphql.String},
					"filters":    &graphql.ArgumentConfig{Type: graphql.NewList(filterInputType)},
					"sort":       &graphql.ArgumentConfig{Type: graphql.String, Description: "Sort option value, e.g. price_ASC"},
					"page":       &graphql.ArgumentConfig{Type: graphql.Int},
					"pageSize":   &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: r.Listing,
			},
			"categories": &graphql.Field{
				Type:    graphql.NewList(categoryType),
				Resolve: r.Categories,
			},
			"category": &graphql.Field{
				Type: categoryType,
				Args: graphql.FieldConfigArgument{
					"path": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.Category,
			},
			"sortOptions": &graphql.Field{
				Type: graphql.NewList(sortOptionType),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.SortOptions,
			},
			"zeroResultQueries": &graphql.Field{
				Type: graphql.NewList(zeroResultQueryType),
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: r.ZeroResultQueries,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addToCart": &graphql.Field{
				Type: addToCartResultType,
				Args: graphql.FieldConfigArgument{
					"sku":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"quantity":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"cartId":      &graphql.ArgumentConfig{Type: graphql.String},
					"name":        &graphql.ArgumentConfig{Type: graphql.String},
					"productType": &graphql.ArgumentConfig{Type: graphql.String},
					"urlKey":      &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.AddToCart,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}
