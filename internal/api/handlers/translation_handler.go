package handlers

import (
	"net/http"

	"github.com/zatekoja/livesearch-plp/internal/i18n"
)

// Translations handles GET /api/plp/translations/{locale}. Unknown locales
// get the default table.
func Translations(w http.ResponseWriter, r *http.Request) {
	tr := i18n.Get(r.PathValue("locale"))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"locale":       tr.Locale(),
		"translations": tr.Table(),
	})
}
