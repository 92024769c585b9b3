package providers

import (
	"context"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

// CartProvider performs cart mutations on the commerce backend
type CartProvider interface {
	// CreateEmptyCart creates a guest cart and returns its id
	CreateEmptyCart(ctx context.Context) (string, error)

	// AddProductsToCart adds items. Business failures come back as
	// UserErrors on the result, transport and GraphQL failures as err.
	AddProductsToCart(ctx context.Context, cartID string, items []entities.CartItem) (*entities.AddToCartResult, error)
}
