package handlers

import (
	"net/http"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
)

// CartHandler adds listing items to carts
type CartHandler struct {
	cart *services.CartService
}

func NewCartHandler(cart *services.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

type refineRequest struct {
	SKU       string   `json:"sku"`
	OptionIDs []string `json:"optionIds"`
}

// AddToCart handles POST /api/plp/cart. A rejected add is still a 200; the
// outcome carries the shopper-facing message.
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req services.AddToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	outcome, err := h.cart.AddToCart(r.Context(), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, outcome)
}

// Refine handles POST /api/plp/products/refine
func (h *CartHandler) Refine(w http.ResponseWriter, r *http.Request) {
	var req refineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	product, err := h.cart.RefineProduct(r.Context(), req.OptionIDs, req.SKU)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}
