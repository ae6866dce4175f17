package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/onerilhan/resource-booking-api/internal/metrics"
)

// MetricsConfig controls the request metrics middleware
type MetricsConfig struct {
	SlowRequestThreshold time.Duration
}

// DefaultMetricsConfig returns a 2s slow request threshold
func DefaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{SlowRequestThreshold: 2 * time.Second}
}

// MetricsMiddleware records duration, count and in flight requests in prometheus
func MetricsMiddleware(config *MetricsConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultMetricsConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			metrics.RequestsInFlight.Inc()
			defer metrics.RequestsInFlight.Dec()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			elapsed := time.Since(start)
			metrics.RecordRequest(r.Method, r.URL.Path, wrapped.statusCode, elapsed.Seconds())

			if elapsed > config.SlowRequestThreshold {
				metrics.SlowRequestsTotal.Inc()
				zerolog.Ctx(r.Context()).Warn().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Dur("response_time", elapsed).
					Msg("Slow request detected")
			}
		})
	}
}
