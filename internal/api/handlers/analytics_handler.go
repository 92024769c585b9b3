package handlers

import (
	"net/http"
	"strconv"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
)

// AnalyticsHandler exposes stored search analytics
type AnalyticsHandler struct {
	analytics *services.SearchAnalyticsService
}

func NewAnalyticsHandler(analytics *services.SearchAnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// ZeroResultQueries handles GET /api/analytics/zero-result-queries?limit=
func (h *AnalyticsHandler) ZeroResultQueries(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "limit must be a number")
			return
		}
		limit = n
	}

	queries, err := h.analytics.GetZeroResultQueries(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"queries": queries,
		"count":   len(queries),
	})
}
