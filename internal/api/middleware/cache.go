package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/campusvoice/portal/backend/internal/domain/providers"
	"github.com/campusvoice/portal/backend/internal/infrastructure/observability"
)

const responseCachePrefix = "http:cache:"

// CacheMiddleware serves GET responses that are identical for every caller
// from the shared cache. Only routes listed with a TTL are cached.
type CacheMiddleware struct {
	cache  providers.CacheProvider
	routes map[string]time.Duration
}

// NewCacheMiddleware caches the public reference routes
func NewCacheMiddleware(cache providers.CacheProvider) *CacheMiddleware {
	return NewCacheMiddlewareWithRoutes(cache, map[string]time.Duration{
		"/api/categories": time.Hour,
	})
}

// NewCacheMiddlewareWithRoutes caches exactly the given paths for their TTL
func NewCacheMiddlewareWithRoutes(cache providers.CacheProvider, routes map[string]time.Duration) *CacheMiddleware {
	return &CacheMiddleware{
		cache:  cache,
		routes: routes,
	}
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ttl, cacheable := m.routes[r.URL.Path]
		if r.Method != http.MethodGet || m.cache == nil || !cacheable || ttl <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		logger := observability.LoggerFromContext(r.Context())
		key := responseCacheKey(r)

		if cached, err := m.cache.Get(r.Context(), key); err == nil && len(cached) > 0 {
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}

		w.Header().Set("X-Cache", "MISS")
		buf := &bufferedResponse{ResponseWriter: w, body: &bytes.Buffer{}}
		next.ServeHTTP(buf, r)
		buf.flushTo(w, buf.body.Bytes())

		if buf.status() != http.StatusOK || buf.body.Len() == 0 {
			return
		}
		if err := m.cache.Set(r.Context(), key, buf.body.Bytes(), int(ttl.Seconds())); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("Failed to cache response")
		}
	})
}

// responseCacheKey keys on path and the canonical (sorted) query string
func responseCacheKey(r *http.Request) string {
	key := responseCachePrefix + r.URL.Path
	if query := r.URL.Query().Encode(); query != "" {
		key += "?" + query
	}
	return key
}
