package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// CORSConfig controls cross origin access to the API
type CORSConfig struct {
	AllowedOrigins []string // exact origins, "*", or "https://*.example.com"
	AllowedMethods []string // answered on preflight
	AllowedHeaders []string // request headers the browser may send
	ExposedHeaders []string // response headers scripts may read
	MaxAge         int      // preflight cache, seconds
}

// DefaultCORSConfig allows the given origins to use the resource API
func DefaultCORSConfig(origins []string) *CORSConfig {
	return &CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Content-Type",
			"Accept",
			RequestIDHeader,
		},
		ExposedHeaders: []string{
			RequestIDHeader,
			"Retry-After",
		},
		MaxAge: 3600,
	}
}

// CORSMiddleware answers preflights and decorates responses for allowed origins.
// Requests from other origins pass through without CORS headers.
func CORSMiddleware(config *CORSConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultCORSConfig(nil)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !isAllowedOrigin(origin, config.AllowedOrigins) {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if len(config.ExposedHeaders) > 0 {
				h.Set("Access-Control-Expose-Headers", strings.Join(config.ExposedHeaders, ", "))
			}

			// preflight
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", strings.Join(config.AllowedHeaders, ", "))
				if config.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
				}

				zerolog.Ctx(r.Context()).Debug().
					Str("origin", origin).
					Str("method", r.Header.Get("Access-Control-Request-Method")).
					Msg("CORS preflight request handled")

				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isAllowedOrigin matches exact origins, "*" and subdomain wildcards such as
// "https://*.example.com". A wildcard with a scheme only matches that scheme;
// a bare "*.example.com" matches any scheme.
func isAllowedOrigin(origin string, allowedOrigins []string) bool {
	originScheme, originHost := splitOrigin(origin)

	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}

		scheme, host := splitOrigin(allowed)
		if !strings.HasPrefix(host, "*.") {
			continue
		}
		if scheme != "" && scheme != originScheme {
			continue
		}
		if strings.HasSuffix(originHost, host[1:]) {
			return true
		}
	}
	return false
}

// splitOrigin separates "scheme://host[:port]"; scheme is empty without "://"
func splitOrigin(origin string) (scheme, host string) {
	if s, h, ok := strings.Cut(origin, "://"); ok {
		return s, h
	}
	return "", origin
}
