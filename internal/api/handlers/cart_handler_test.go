package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/livesearch-plp/internal/api/handlers"
	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/i18n"
)

func TestCartHandler_AddToCart_CreatesCart(t *testing.T) {
	cart := new(MockCartProvider)
	cart.On("CreateEmptyCart", mock.Anything).Return("cart-1", nil)
	cart.On("AddProductsToCart", mock.Anything, "cart-1", []entities.CartItem{{SKU: "24-MB01", Quantity: 1}}).
		Return(&entities.AddToCartResult{CartID: "cart-1", Items: []entities.CartLine{{SKU: "24-MB01", Quantity: 1}}}, nil)

	handler := handlers.NewCartHandler(services.NewCartService(cart, nil, i18n.Get("en_US"), ""))

	body := []byte(`{"sku":"24-MB01","name":"Joust Duffle Bag","product_type":"SimpleProduct"}`)
	rr := httptest.NewRecorder()
	handler.AddToCart(rr, httptest.NewRequest(http.MethodPost, "/api/plp/cart", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	outcome := decodeBody(t, rr)
	assert.Equal(t, true, outcome["success"])
	assert.Equal(t, "cart-1", outcome["cart_id"])
	assert.Contains(t, outcome["message"], "Joust Duffle Bag")
	cart.AssertExpectations(t)
}

func TestCartHandler_AddToCart_ConfigurableRedirects(t *testing.T) {
	cart := new(MockCartProvider)
	handler := handlers.NewCartHandler(services.NewCartService(cart, nil, nil, "/products/{urlKey}"))

	body := []byte(`{"sku":"MH01","product_type":"ConfigurableProduct","url_key":"chaz-hoodie"}`)
	rr := httptest.NewRecorder()
	handler.AddToCart(rr, httptest.NewRequest(http.MethodPost, "/api/plp/cart", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/products/chaz-hoodie", decodeBody(t, rr)["redirect_url"])
	cart.AssertNotCalled(t, "CreateEmptyCart", mock.Anything)
}

func TestCartHandler_AddToCart_RequiresSKU(t *testing.T) {
	handler := handlers.NewCartHandler(services.NewCartService(new(MockCartProvider), nil, nil, ""))

	rr := httptest.NewRecorder()
	handler.AddToCart(rr, httptest.NewRequest(http.MethodPost, "/api/plp/cart", bytes.NewReader([]byte(`{"quantity":2}`))))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "sku is required")
}

func TestCartHandler_Refine(t *testing.T) {
	refiner := new(MockProductRefiner)
	refiner.On("RefineProduct", mock.Anything, []string{"Y29uZmln"}, "MH01").
		Return(&entities.RefinedProduct{SKU: "MH01-XS-Black", Price: &entities.Money{Value: 52, Currency: "USD"}}, nil)

	handler := handlers.NewCartHandler(services.NewCartService(nil, refiner, nil, ""))

	body := []byte(`{"sku":"MH01","optionIds":["Y29uZmln"]}`)
	rr := httptest.NewRecorder()
	handler.Refine(rr, httptest.NewRequest(http.MethodPost, "/api/plp/products/refine", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "MH01-XS-Black", decodeBody(t, rr)["sku"])
}
