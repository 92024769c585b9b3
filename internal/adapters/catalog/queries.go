package catalog

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

const productSearchQuery = `
query productSearch(
  $phrase: String!
  $pageSize: Int
  $currentPage: Int = 1
  $filter: [SearchClauseInput!]
  $sort: [ProductSearchSortInput!]
  $context: QueryContextInput
) {
  productSearch(
    phrase: $phrase
    page_size: $pageSize
    current_page: $currentPage
    filter: $filter
    sort: $sort
    context: $context
  ) {
    total_count
    items {
      product {
        __typename
        sku
        name
        canonical_url
        small_image { url }
        price_range {
          minimum_price {
            final_price { value currency }
            regular_price { value currency }
          }
          maximum_price {
            final_price { value currency }
            regular_price { value currency }
          }
        }
      }
      productView {
        __typename
        sku
        name
        inStock
        url
        urlKey
        images { label url roles }
        attributes { name label value roles }
      }
    }
    facets {
      title
      attribute
      type
      buckets {
        title
        __typename
        ... on CategoryView { name count path }
        ... on ScalarBucket { id count }
        ... on RangeBucket { from to count }
        ... on StatsBucket { min max }
      }
    }
    page_info { current_page page_size total_pages }
  }
}`

const attributeMetadataQuery = `
query attributeMetadata {
  attributeMetadata {
    sortable { label attribute numeric }
    filterableInSearch { label attribute numeric }
  }
}`

const categoriesQuery = `
query categories($ids: [String!], $roles: [String!], $subtree: Subtree) {
  categories(ids: $ids, roles: $roles, subtree: $subtree) {
    id
    name
    urlPath
    urlKey
    parentId
    level
    children
  }
}`

const refineProductQuery = `
query refineProduct($optionIds: [String!]!, $sku: String!) {
  refineProduct(optionIds: $optionIds, sku: $sku) {
    __typename
    id
    sku
    name
    inStock
    url
    urlKey
    images { label url roles }
    ... on SimpleProductView {
      price { final { amount { value currency } } }
    }
    ... on ComplexProductView {
      priceRange { minimum { final { amount { value currency } } } }
    }
  }
}`

const createEmptyCartMutation = `
mutation createEmptyCart {
  createEmptyCart
}`

const addProductsToCartMutation = `
mutation addProductsToCart($cartId: String!, $cartItems: [CartItemInput!]!) {
  addProductsToCart(cartId: $cartId, cartItems: $cartItems) {
    cart {
      id
      items {
        quantity
        product { sku name }
      }
    }
    user_errors { code message }
  }
}`

// documents lists every operation sent to the commerce backend by name
var documents = map[string]string{
	"productSearch":     productSearchQuery,
	"attributeMetadata": attributeMetadataQuery,
	"categories":        categoriesQuery,
	"refineProduct":     refineProductQuery,
	"createEmptyCart":   createEmptyCartMutation,
	"addProductsToCart": addProductsToCartMutation,
}

func init() {
	for name, doc := range documents {
		if err := validateDocument(name, doc); err != nil {
			panic(err)
		}
	}
}

// validateDocument parses doc and checks it declares exactly the named
// operation.
func validateDocument(name, doc string) error {
	parsed, err := parser.ParseQuery(&ast.Source{Name: name, Input: doc})
	if err != nil {
		return fmt.Errorf("catalog: malformed %s document: %w", name, err)
	}
	if len(parsed.Operations) != 1 || parsed.Operations[0].Name != name {
		return fmt.Errorf("catalog: %s document must declare one operation named %s", name, name)
	}
	return nil
}
