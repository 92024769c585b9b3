package routes

import (
	"net/http"

	"github.com/zatekoja/livesearch-plp/internal/api/handlers"
	"github.com/zatekoja/livesearch-plp/internal/api/middleware"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	listingHandler   *handlers.ListingHandler
	categoryHandler  *handlers.CategoryHandler
	cartHandler      *handlers.CartHandler
	analyticsHandler *handlers.AnalyticsHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router. analyticsHandler and cacheMiddleware may
// be nil when PostgreSQL or Redis are not configured.
func NewRouter(
	listingHandler *handlers.ListingHandler,
	categoryHandler *handlers.CategoryHandler,
	cartHandler *handlers.CartHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		listingHandler:   listingHandler,
		categoryHandler:  categoryHandler,
		cartHandler:      cartHandler,
		analyticsHandler: analyticsHandler,
		cacheMiddleware:  cacheMiddleware,
		metrics:          metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Listing
	r.mux.HandleFunc("POST /api/plp/mount", r.listingHandler.Mount)
	r.mux.HandleFunc("GET /api/plp/listing", r.listingHandler.Listing)
	r.mux.HandleFunc("GET /api/plp/sort-options", r.listingHandler.SortOptions)
	r.mux.HandleFunc("GET /api/plp/sessions/{id}", r.listingHandler.Session)

	// Categories
	r.mux.HandleFunc("GET /api/plp/categories", r.categoryHandler.Categories)
	r.mux.HandleFunc("GET /api/plp/categories/resolve", r.categoryHandler.Resolve)

	// Cart
	r.mux.HandleFunc("POST /api/plp/cart", r.cartHandler.AddToCart)
	r.mux.HandleFunc("POST /api/plp/products/refine", r.cartHandler.Refine)

	r.mux.HandleFunc("GET /api/plp/translations/{locale}", handlers.Translations)

	if r.analyticsHandler != nil {
		r.mux.HandleFunc("GET /api/analytics/zero-result-queries", r.analyticsHandler.ZeroResultQueries)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// Logging sits outside the cache so hits are logged with their request id.
	var handler http.Handler = r.mux

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
