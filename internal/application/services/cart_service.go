package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
	apperrors "github.com/zatekoja/livesearch-plp/pkg/errors"
)

// AddToCartRequest identifies the listing item a shopper added
type AddToCartRequest struct {
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	ProductType  string `json:"product_type"`
	URLKey       string `json:"url_key"`
	CanonicalURL string `json:"canonical_url"`
	CartID       string `json:"cart_id"`
	Quantity     int    `json:"quantity"`
}

// CartService adds listing items to the shopper's cart
type CartService struct {
	cart          providers.CartProvider
	refiner       providers.ProductRefiner
	tr            Translator
	routeTemplate string
}

// NewCartService creates a cart service. routeTemplate may contain {sku}
// and {urlKey}; when empty, products route to their canonical URL.
func NewCartService(cart providers.CartProvider, refiner providers.ProductRefiner, tr Translator, routeTemplate string) *CartService {
	if tr == nil {
		tr = keyTranslator{}
	}
	return &CartService{cart: cart, refiner: refiner, tr: tr, routeTemplate: routeTemplate}
}

// ProductURL returns the storefront URL of a product
func (s *CartService) ProductURL(sku, urlKey, canonicalURL string) string {
	if s.routeTemplate == "" {
		return canonicalURL
	}
	return strings.NewReplacer("{sku}", sku, "{urlKey}", urlKey).Replace(s.routeTemplate)
}

// AddToCart adds a simple product to the cart, or returns a redirect for
// products that need options chosen on their own page. Cart failures are
// reported through the outcome message; only a malformed request is an error.
func (s *CartService) AddToCart(ctx context.Context, req AddToCartRequest) (*entities.AddToCartOutcome, error) {
	if req.SKU == "" {
		return nil, apperrors.NewValidationError("sku is required")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	if req.ProductType != "" && req.ProductType != entities.ProductTypeSimple {
		url := s.ProductURL(req.SKU, req.URLKey, req.CanonicalURL)
		if url == "" {
			return nil, apperrors.NewValidationError("product requires options but has no URL")
		}
		return &entities.AddToCartOutcome{RedirectURL: url}, nil
	}

	logger := log.Ctx(ctx).With().Str("sku", req.SKU).Logger()

	if s.cart == nil {
		return nil, apperrors.NewInternalError("cart is not configured", nil)
	}

	cartID := req.CartID
	if cartID == "" {
		id, err := s.cart.CreateEmptyCart(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("failed to create cart")
			return s.failure(), nil
		}
		cartID = id
	}

	result, err := s.cart.AddProductsToCart(ctx, cartID, []entities.CartItem{{SKU: req.SKU, Quantity: req.Quantity}})
	if err != nil {
		logger.Error().Err(err).Str("cart_id", cartID).Msg("add to cart request failed")
		return s.failure(), nil
	}
	if len(result.UserErrors) > 0 {
		logger.Warn().
			Str("cart_id", cartID).
			Str("code", result.UserErrors[0].Code).
			Str("message", result.UserErrors[0].Message).
			Msg("add to cart rejected")
		return s.failure(), nil
	}

	count := 0
	for _, line := range result.Items {
		count += line.Quantity
	}
	return s.success(req.Name, cartID, count), nil
}

// RefineProduct resolves the variant of a configurable product for the
// selected swatch options.
func (s *CartService) RefineProduct(ctx context.Context, optionIDs []string, sku string) (*entities.RefinedProduct, error) {
	if sku == "" {
		return nil, apperrors.NewValidationError("sku is required")
	}
	if s.refiner == nil {
		return nil, apperrors.NewInternalError("product refinement is not configured", nil)
	}
	product, err := s.refiner.RefineProduct(ctx, optionIDs, sku)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to refine product", err)
	}
	return product, nil
}

func (s *CartService) success(name, cartID string, count int) *entities.AddToCartOutcome {
	return &entities.AddToCartOutcome{
		Success:   true,
		Message:   s.tr.Format("ProductCard.itemAdded", map[string]string{"product": name}),
		CartID:    cartID,
		ItemCount: count,
	}
}

func (s *CartService) failure() *entities.AddToCartOutcome {
	return &entities.AddToCartOutcome{Message: s.tr.T("ProductCard.addToCartError")}
}
