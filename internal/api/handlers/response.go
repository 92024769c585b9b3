package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/application/services"
	apperrors "github.com/zatekoja/livesearch-plp/pkg/errors"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// statusFor maps an error to its HTTP status
func statusFor(err error) int {
	if errors.Is(err, services.ErrStaleResult) {
		return http.StatusConflict
	}
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondWithAppError writes err with the status for its type. Internal
// details are logged, never returned.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := log.Ctx(r.Context())

	message := http.StatusText(status)
	var appErr *apperrors.AppError
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
		if status == http.StatusBadGateway {
			message = "commerce backend unavailable"
		}
	case errors.As(err, &appErr):
		message = appErr.Message
	case status == http.StatusConflict:
		message = err.Error()
	}
	respondWithError(w, status, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}
