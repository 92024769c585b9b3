package typesense

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductSchema(t *testing.T) {
	schema := ProductSchema("products_test")

	assert.Equal(t, "products_test", schema.Name)
	assert.Equal(t, "position", *schema.DefaultSortingField)

	facets := map[string]bool{}
	for _, f := range schema.Fields {
		if f.Facet != nil && *f.Facet {
			facets[f.Name] = true
		}
	}
	for _, name := range []string{"category_paths", "visibility", "in_stock", "price", "attr_.*"} {
		assert.True(t, facets[name], "%s should be faceted", name)
	}
}

func TestNewClientFrom_DefaultCollection(t *testing.T) {
	c := NewClientFrom(nil, "")
	assert.Equal(t, ProductsCollection, c.Collection())
}
