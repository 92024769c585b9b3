package entities

// ProductTypeSimple is the only product type that can be added to the cart
// straight from the listing.
const ProductTypeSimple = "SimpleProduct"

// Money is an amount in a currency
type Money struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// PriceBound is the final and regular price at one end of a range
type PriceBound struct {
	Final   Money `json:"final_price"`
	Regular Money `json:"regular_price"`
}

// PriceRange is a product's minimum and maximum price
type PriceRange struct {
	Minimum PriceBound `json:"minimum_price"`
	Maximum PriceBound `json:"maximum_price"`
}

// Image is a product image reference
type Image struct {
	Label string   `json:"label,omitempty"`
	URL   string   `json:"url"`
	Roles []string `json:"roles,omitempty"`
}

// ProductAttribute is a named attribute of a product view
type ProductAttribute struct {
	Name  string   `json:"name"`
	Label string   `json:"label"`
	Value string   `json:"value"`
	Roles []string `json:"roles,omitempty"`
}

// ProductDetails is the commerce product record
type ProductDetails struct {
	Typename     string     `json:"__typename"`
	SKU          string     `json:"sku"`
	Name         string     `json:"name"`
	CanonicalURL string     `json:"canonical_url"`
	SmallImage   *Image     `json:"small_image,omitempty"`
	PriceRange   PriceRange `json:"price_range"`
}

// ProductView is the catalog service view of a product
type ProductView struct {
	Typename   string             `json:"__typename"`
	SKU        string             `json:"sku"`
	Name       string             `json:"name"`
	InStock    bool               `json:"inStock"`
	URL        string             `json:"url"`
	URLKey     string             `json:"urlKey"`
	Images     []Image            `json:"images"`
	Attributes []ProductAttribute `json:"attributes"`
}

// Product is one listing item
type Product struct {
	Product     ProductDetails `json:"product"`
	ProductView ProductView    `json:"productView"`
}

// Attribute returns the value of the named product view attribute, or ""
func (p Product) Attribute(name string) string {
	for _, attr := range p.ProductView.Attributes {
		if attr.Name == name {
			return attr.Value
		}
	}
	return ""
}

// SKU returns the product SKU, preferring the catalog view
func (p Product) SKU() string {
	if p.ProductView.SKU != "" {
		return p.ProductView.SKU
	}
	return p.Product.SKU
}

// Name returns the display name, preferring the catalog view
func (p Product) Name() string {
	if p.ProductView.Name != "" {
		return p.ProductView.Name
	}
	return p.Product.Name
}

// PageInfo is the backend's paging metadata
type PageInfo struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalPages  int `json:"total_pages"`
}

// ProductSearchResult is the outcome of one productSearch call
type ProductSearchResult struct {
	Items      []Product `json:"items"`
	Facets     []Facet   `json:"facets"`
	TotalCount int       `json:"total_count"`
	PageInfo   PageInfo  `json:"page_info"`
}

// TotalPages returns the page count, never less than 1
func (r *ProductSearchResult) TotalPages() int {
	if r == nil || r.PageInfo.TotalPages < 1 {
		return 1
	}
	return r.PageInfo.TotalPages
}

// RefinedProduct is the result of selecting options on a configurable product
type RefinedProduct struct {
	Typename string  `json:"__typename"`
	ID       string  `json:"id"`
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	InStock  bool    `json:"inStock"`
	URL      string  `json:"url"`
	URLKey   string  `json:"urlKey"`
	Images   []Image `json:"images"`
	Price    *Money  `json:"price,omitempty"`
}

// IndexedProduct is a listing item with the category placement it was
// collected under.
type IndexedProduct struct {
	Product       Product  `json:"product"`
	CategoryPaths []string `json:"category_paths"`
	CategoryIDs   []string `json:"category_ids,omitempty"`
	Position      int      `json:"position"`
}

// AddCategory records another placement, ignoring duplicates
func (p *IndexedProduct) AddCategory(path, id string) {
	if path != "" && !containsString(p.CategoryPaths, path) {
		p.CategoryPaths = append(p.CategoryPaths, path)
	}
	if id != "" && !containsString(p.CategoryIDs, id) {
		p.CategoryIDs = append(p.CategoryIDs, id)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
