package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubGraphQL() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"categories":[]}}`))
	})
}

func TestHealthEndpoint(t *testing.T) {
	mux := newMux(stubGraphQL(), nil, false)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"graphql"}`, rec.Body.String())
}

func TestPlaygroundOnlyOutsideProduction(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(stubGraphQL(), nil, true).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playground", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/graphql")

	rec = httptest.NewRecorder()
	newMux(stubGraphQL(), nil, false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playground", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGraphQLEndpointMiddleware(t *testing.T) {
	mux := newMux(stubGraphQL(), nil, false)

	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	req.Header.Set("Origin", "https://shop.test")
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "private, no-cache, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"data":{"categories":[]}}`, rec.Body.String())
}

func TestGraphQLPreflight(t *testing.T) {
	mux := newMux(stubGraphQL(), nil, false)

	req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	req.Header.Set("Origin", "https://shop.test")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Empty(t, rec.Body.String())
}
