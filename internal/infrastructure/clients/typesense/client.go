package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/zatekoja/livesearch-plp/pkg/config"
	"github.com/zatekoja/livesearch-plp/pkg/retry"
)

// ProductsCollection is the default collection for listing documents
const ProductsCollection = "products"

// Client represents a Typesense client
type Client struct {
	client     *typesense.Client
	collection string
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	err := retry.DoWithLog(
		context.Background(),
		retry.DefaultConfig(),
		"Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.Health(ctx, 2*time.Second)
			return err
		},
		retry.ZerologFunc(log.Logger, "Typesense"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Info().Str("url", cfg.URL).Msg("connected to Typesense")
	return NewClientFrom(client, cfg.Collection), nil
}

// NewClientFrom wraps an existing typesense client
func NewClientFrom(client *typesense.Client, collection string) *Client {
	if collection == "" {
		collection = ProductsCollection
	}
	return &Client{client: client, collection: collection}
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// Collection returns the products collection name
func (c *Client) Collection() string {
	return c.collection
}

// ProductSchema describes listing documents. Every filterable product
// attribute is stored as a faceted string array under "attr_<code>".
func ProductSchema(name string) *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: name,
		Fields: []api.Field{
			{Name: "sku", Type: "string"},
			{Name: "name", Type: "string"},
			{Name: "url_key", Type: "string", Optional: pointer.True()},
			{Name: "canonical_url", Type: "string", Optional: pointer.True()},
			{Name: "image_url", Type: "string", Optional: pointer.True(), Index: pointer.False()},
			{Name: "product_type", Type: "string", Facet: pointer.True()},
			{Name: "price", Type: "float", Facet: pointer.True()},
			{Name: "regular_price", Type: "float", Optional: pointer.True()},
			{Name: "currency", Type: "string", Optional: pointer.True()},
			{Name: "in_stock", Type: "bool", Facet: pointer.True()},
			{Name: "visibility", Type: "string", Facet: pointer.True()},
			{Name: "category_paths", Type: "string[]", Facet: pointer.True()},
			{Name: "category_ids", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "position", Type: "int32"},
			{Name: "attr_.*", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "product_json", Type: "string", Optional: pointer.True(), Index: pointer.False()},
			{Name: "updated_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("position"),
	}
}

// InitSchema ensures the products collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == c.collection {
			log.Debug().Str("collection", c.collection).Msg("typesense collection already exists")
			return nil
		}
	}

	if _, err := c.client.Collections().Create(ctx, ProductSchema(c.collection)); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Info().Str("collection", c.collection).Msg("created typesense collection")
	return nil
}
