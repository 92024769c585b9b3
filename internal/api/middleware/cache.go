package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
)

// CacheConfig holds cache configuration for specific routes. Name becomes
// part of the key so invalidation can target one route family.
type CacheConfig struct {
	Name       string
	TTLSeconds int
	Enabled    bool
}

// CacheMiddleware provides HTTP response caching
type CacheMiddleware struct {
	cache        providers.CacheProvider
	routeConfigs map[string]CacheConfig
}

// DefaultCacheRoutes are the cached storefront reads. Keys match the
// http:cache:*listing* and http:cache:*categories* invalidation patterns.
func DefaultCacheRoutes() map[string]CacheConfig {
	return map[string]CacheConfig{
		"/api/plp/listing":    {Name: "listing", TTLSeconds: 120, Enabled: true},
		"/api/plp/categories": {Name: "categories", TTLSeconds: 900, Enabled: true}, // also covers /resolve
	}
}

// NewCacheMiddleware creates a cache middleware for the default routes
func NewCacheMiddleware(cache providers.CacheProvider) *CacheMiddleware {
	return &CacheMiddleware{cache: cache, routeConfigs: DefaultCacheRoutes()}
}

// CacheMiddlewareWithConfig creates a cache middleware with custom config
func CacheMiddlewareWithConfig(cache providers.CacheProvider, configs map[string]CacheConfig) func(http.Handler) http.Handler {
	m := &CacheMiddleware{cache: cache, routeConfigs: configs}
	return m.Middleware
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		config := m.getRouteConfig(r.URL.Path)
		if !config.Enabled {
			next.ServeHTTP(w, r)
			return
		}
		// Session listings depend on server-side state
		if r.URL.Query().Get("session") != "" {
			next.ServeHTTP(w, r)
			return
		}

		logger := log.Ctx(r.Context())
		cacheKey := m.generateCacheKey(config.Name, r)

		if cached, err := m.cache.Get(r.Context(), cacheKey); err == nil && len(cached) > 0 {
			logger.Debug().Str("key", cacheKey).Msg("http cache hit")
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}

		w.Header().Set("X-Cache", "MISS")
		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode == http.StatusOK && recorder.body.Len() > 0 {
			if err := m.cache.Set(r.Context(), cacheKey, recorder.body.Bytes(), config.TTLSeconds); err != nil {
				logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache response")
			}
		}
	})
}

// getRouteConfig returns the config of the longest matching route prefix
func (m *CacheMiddleware) getRouteConfig(path string) CacheConfig {
	if config, ok := m.routeConfigs[path]; ok {
		return config
	}
	best := ""
	for pattern := range m.routeConfigs {
		if strings.HasPrefix(path, pattern) && len(pattern) > len(best) {
			best = pattern
		}
	}
	if best == "" {
		return CacheConfig{Enabled: false}
	}
	return m.routeConfigs[best]
}

// generateCacheKey hashes the path and the sorted query
func (m *CacheMiddleware) generateCacheKey(name string, r *http.Request) string {
	query := r.URL.Query()
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(r.URL.Path)
	for _, k := range keys {
		values := append([]string(nil), query[k]...)
		sort.Strings(values)
		b.WriteString("|" + k + "=" + strings.Join(values, ","))
	}

	hash := sha256.Sum256([]byte(b.String()))
	if name == "" {
		name = "route"
	}
	return "http:cache:" + name + ":" + hex.EncodeToString(hash[:])
}

// responseRecorder captures the response for caching
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	if !r.written {
		r.statusCode = statusCode
		r.ResponseWriter.WriteHeader(statusCode)
		r.written = true
	}
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
