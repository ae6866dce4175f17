package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/onerilhan/resource-booking-api/internal/apperrors"
	"github.com/onerilhan/resource-booking-api/internal/utils"
)

// ErrorHandlingMiddleware recovers panics into a generic 500. The body never
// carries the panic value or a stack trace.
func ErrorHandlingMiddleware(config *apperrors.ErrorConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = apperrors.DefaultErrorConfig()
	}

	keep := make(map[string]bool, len(config.IncludeHeaders))
	for _, h := range config.IncludeHeaders {
		keep[http.CanonicalHeaderKey(h)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				logPanic(r, newPanicInfo(w, r, recovered, debug.Stack()), config)

				if wrapped.wroteHeader {
					// headers are gone, nothing sensible left to send
					return
				}

				for key := range w.Header() {
					if !keep[key] {
						w.Header().Del(key)
					}
				}

				if appErr, ok := recovered.(*apperrors.Error); ok && appErr.Kind != apperrors.KindInternal {
					utils.WriteJSON(w, appErr.Status(), apperrors.NewErrorResponse(appErr))
					return
				}
				utils.WriteMessage(w, http.StatusInternalServerError, config.InternalMessage)
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}
