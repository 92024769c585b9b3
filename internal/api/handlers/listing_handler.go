package handlers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
	"github.com/zatekoja/livesearch-plp/internal/application/storefront"
	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
)

// Query parameters the API reads besides listing state
const (
	paramSession    = "session"
	paramCategory   = "category"
	paramCategoryID = "category_id"
)

// ListingHandler mounts listings and serves their results
type ListingHandler struct {
	mounter  *storefront.Mounter
	registry *storefront.Registry
	store    *entities.StoreDetails
}

// NewListingHandler creates a listing handler. store is the configured
// default storefront used when a request names no session.
func NewListingHandler(mounter *storefront.Mounter, registry *storefront.Registry, store *entities.StoreDetails) *ListingHandler {
	return &ListingHandler{mounter: mounter, registry: registry, store: store}
}

type mountRequest struct {
	StoreDetails map[string]interface{} `json:"storeDetails"`
	Root         string                 `json:"root"`
	PageURL      string                 `json:"pageUrl"`
}

type mountResponse struct {
	SessionID    string                `json:"session_id"`
	StoreDetails entities.StoreDetails `json:"store_details"`
	Listing      *services.ListingView `json:"listing"`
}

// Mount handles POST /api/plp/mount
func (h *ListingHandler) Mount(w http.ResponseWriter, r *http.Request) {
	var req mountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	var pageURL *url.URL
	if req.PageURL != "" {
		u, err := url.Parse(req.PageURL)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "pageUrl is not a valid URL")
			return
		}
		pageURL = u
	}

	session, err := h.mounter.Mount(r.Context(), storefront.MountOptions{
		StoreDetails: req.StoreDetails,
		Root:         req.Root,
		PageURL:      pageURL,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	view, err := session.Search(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	h.registry.Put(session)

	respondWithJSON(w, http.StatusCreated, mountResponse{
		SessionID:    session.ID(),
		StoreDetails: session.Store(),
		Listing:      view,
	})
}

// Listing handles GET /api/plp/listing. With a session parameter the
// mounted session navigates to the given state; otherwise the default store
// is searched, optionally on the category named by category or category_id.
func (h *ListingHandler) Listing(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	if id := values.Get(paramSession); id != "" {
		session, ok := h.registry.Get(id)
		if !ok {
			respondWithError(w, http.StatusNotFound, "listing session not found")
			return
		}
		values.Del(paramSession)
		view, err := session.Navigate(r.Context(), values)
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, view)
		return
	}

	session, err := h.defaultSession(r.Context(), r.URL)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	view, err := session.Search(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

type sessionResponse struct {
	SessionID string                `json:"session_id"`
	Loading   bool                  `json:"loading"`
	URL       string                `json:"url"`
	Listing   *services.ListingView `json:"listing"`
}

// Session handles GET /api/plp/sessions/{id}. It reports whether a search
// is in flight and returns the last published listing without searching.
func (h *ListingHandler) Session(w http.ResponseWriter, r *http.Request) {
	session, ok := h.registry.Get(r.PathValue("id"))
	if !ok {
		respondWithError(w, http.StatusNotFound, "listing session not found")
		return
	}
	respondWithJSON(w, http.StatusOK, sessionResponse{
		SessionID: session.ID(),
		Loading:   session.Loading(),
		URL:       session.URL(),
		Listing:   session.View(),
	})
}

// SortOptions handles GET /api/plp/sort-options
func (h *ListingHandler) SortOptions(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get(paramSession); id != "" {
		session, ok := h.registry.Get(id)
		if !ok {
			respondWithError(w, http.StatusNotFound, "listing session not found")
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"sort_options": session.SortOptions()})
		return
	}

	session, err := h.defaultSession(r.Context(), r.URL)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"sort_options": session.SortOptions()})
}

// defaultSession mounts a throwaway session for the default store on the
// request's URL.
func (h *ListingHandler) defaultSession(ctx context.Context, requestURL *url.URL) (*services.ListingSession, error) {
	query := requestURL.Query()
	categoryPath, categoryID := query.Get(paramCategory), query.Get(paramCategoryID)
	query.Del(paramCategory)
	query.Del(paramCategoryID)

	pageURL := *requestURL
	pageURL.RawQuery = query.Encode()

	log.Ctx(ctx).Debug().Str("category", categoryPath).Str("category_id", categoryID).Msg("mounting default store")
	return h.mounter.MountCategory(ctx, h.store, categoryPath, categoryID, &pageURL)
}
