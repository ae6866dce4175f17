package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/onerilhan/resource-booking-api/internal/apperrors"
	"github.com/onerilhan/resource-booking-api/internal/utils"
)

// APIPrefix is the path namespace answered with JSON
const APIPrefix = "/api"

// PageNotFoundBody is the plain text answer for unknown pages
const PageNotFoundBody = "404 - Page not found"

// IsAPIPath reports whether path belongs to the JSON API
func IsAPIPath(path string) bool {
	return path == APIPrefix || strings.HasPrefix(path, APIPrefix+"/")
}

// NotFoundJSONHandler answers unknown API routes, including known paths
// requested with an unsupported method
func NotFoundJSONHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusNotFound, apperrors.ErrorResponse{
			OK:    false,
			Error: apperrors.MessageNotFound,
			Path:  r.URL.RequestURI(),
		})

		zerolog.Ctx(r.Context()).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("404 Not Found")
	}
}

// PageNotFoundHandler answers unknown pages with plain text
func PageNotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(PageNotFoundBody))
	}
}

// NotFoundHandler picks the JSON or the page variant by path
func NotFoundHandler() http.HandlerFunc {
	api := NotFoundJSONHandler()
	page := PageNotFoundHandler()
	return func(w http.ResponseWriter, r *http.Request) {
		if IsAPIPath(r.URL.Path) {
			api(w, r)
			return
		}
		page(w, r)
	}
}
