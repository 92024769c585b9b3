package catalog

import (
	"context"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/clients/commerce"
	apperrors "github.com/zatekoja/livesearch-plp/pkg/errors"
)

// CartAdapter performs cart mutations against the commerce GraphQL endpoint
type CartAdapter struct {
	client *commerce.Client
}

var _ providers.CartProvider = (*CartAdapter)(nil)

// NewCartAdapter creates a cart adapter
func NewCartAdapter(client *commerce.Client) *CartAdapter {
	return &CartAdapter{client: client}
}

// CreateEmptyCart creates a guest cart and returns its id
func (a *CartAdapter) CreateEmptyCart(ctx context.Context) (string, error) {
	var resp struct {
		CreateEmptyCart string `json:"createEmptyCart"`
	}
	err := a.client.Mutate(ctx, commerce.GraphQLRequest{
		Query:         createEmptyCartMutation,
		OperationName: "createEmptyCart",
	}, &resp)
	if err != nil {
		return "", apperrors.NewExternalError("create cart failed", err)
	}
	if resp.CreateEmptyCart == "" {
		return "", apperrors.NewExternalError("create cart returned no id", nil)
	}
	return resp.CreateEmptyCart, nil
}

type cartResponse struct {
	Cart *struct {
		ID    string `json:"id"`
		Items []struct {
			Quantity int `json:"quantity"`
			Product  struct {
				SKU  string `json:"sku"`
				Name string `json:"name"`
			} `json:"product"`
		} `json:"items"`
	} `json:"cart"`
	UserErrors []entities.CartUserError `json:"user_errors"`
}

// AddProductsToCart adds items to an existing cart
func (a *CartAdapter) AddProductsToCart(ctx context.Context, cartID string, items []entities.CartItem) (*entities.AddToCartResult, error) {
	var resp struct {
		AddProductsToCart *cartResponse `json:"addProductsToCart"`
	}
	err := a.client.Mutate(ctx, commerce.GraphQLRequest{
		Query:         addProductsToCartMutation,
		Variables:     map[string]interface{}{"cartId": cartID, "cartItems": items},
		OperationName: "addProductsToCart",
	}, &resp)
	if err != nil {
		return nil, apperrors.NewExternalError("add products to cart failed", err)
	}
	if resp.AddProductsToCart == nil {
		return nil, apperrors.NewExternalError("add products to cart returned no data", nil)
	}

	result := &entities.AddToCartResult{
		CartID:     cartID,
		UserErrors: resp.AddProductsToCart.UserErrors,
	}
	if cart := resp.AddProductsToCart.Cart; cart != nil {
		if cart.ID != "" {
			result.CartID = cart.ID
		}
		for _, item := range cart.Items {
			result.Items = append(result.Items, entities.CartLine{
				SKU:      item.Product.SKU,
				Name:     item.Product.Name,
				Quantity: item.Quantity,
			})
		}
	}
	return result, nil
}
