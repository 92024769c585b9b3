package handlers

import (
	"net/http"
	"strings"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
)

// CategoryHandler serves the category forest of the default store
type CategoryHandler struct {
	categories *services.CategoryService
}

func NewCategoryHandler(categories *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// Categories handles GET /api/plp/categories
func (h *CategoryHandler) Categories(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.EnsureLoaded(r.Context()); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"categories": h.categories.Categories(),
	})
}

// Resolve handles GET /api/plp/categories/resolve?path=
func (h *CategoryHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		respondWithError(w, http.StatusBadRequest, "path parameter is required")
		return
	}

	category, descendants, err := h.categories.Resolve(r.Context(), path)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	paths := make([]string, 0, len(descendants))
	for _, c := range descendants {
		paths = append(paths, c.URLPath)
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"category":    category,
		"descendants": descendants,
		"url_paths":   paths,
	})
}
