package entities

// CartItem is one line of an add-to-cart request
type CartItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// CartUserError is a business error returned by the cart mutation
type CartUserError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CartLine is one item of the cart after the mutation
type CartLine struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// AddToCartResult is the commerce backend's answer to addProductsToCart
type AddToCartResult struct {
	CartID     string          `json:"cart_id"`
	Items      []CartLine      `json:"items"`
	UserErrors []CartUserError `json:"user_errors"`
}

// AddToCartOutcome is what the shopper sees after an add-to-cart attempt
type AddToCartOutcome struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	RedirectURL string `json:"redirect_url,omitempty"`
	CartID      string `json:"cart_id,omitempty"`
	ItemCount   int    `json:"item_count"`
}
