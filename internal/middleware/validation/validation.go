// Package validation rejects malformed API requests before they reach a handler.
package validation

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/onerilhan/resource-booking-api/internal/utils"
)

// Config controls the request validation middleware
type Config struct {
	MaxBodySize  int64    // bytes
	ContentTypes []string // accepted media types for bodies
	PathPrefix   string   // only requests under this prefix are checked
}

// DefaultConfig accepts JSON bodies up to 1MB under /api
func DefaultConfig() *Config {
	return &Config{
		MaxBodySize:  1024 * 1024,
		ContentTypes: []string{"application/json"},
		PathPrefix:   "/api",
	}
}

// Middleware validates content type and size of request bodies. The body
// is capped at MaxBodySize so a lying Content-Length cannot bypass the limit.
func Middleware(config *Config) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, config.PathPrefix) || !hasBody(r) {
				next.ServeHTTP(w, r)
				return
			}

			if err := ValidateContent(r, config); err != nil {
				zerolog.Ctx(r.Context()).Debug().
					Err(err).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("request content rejected")
				utils.WriteMessage(w, err.Status, err.Message)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, config.MaxBodySize)
			next.ServeHTTP(w, r)
		})
	}
}

// hasBody reports whether the method carries a request body we decode
func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
