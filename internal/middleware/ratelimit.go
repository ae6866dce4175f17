package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/onerilhan/resource-booking-api/internal/utils"
)

// RateLimitConfig configures the per client token bucket
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
	SkipPaths         []string
	IdleTimeout       time.Duration // limiters unused this long are dropped
	CleanupInterval   time.Duration
	Message           string
}

// DefaultRateLimitConfig returns the settings for the given per minute rate
func DefaultRateLimitConfig(requestsPerMinute int) *RateLimitConfig {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 120
	}
	burst := requestsPerMinute / 4
	if burst < 1 {
		burst = 1
	}
	return &RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
		Burst:             burst,
		SkipPaths:         []string{"/health", "/metrics"},
		IdleTimeout:       30 * time.Minute,
		CleanupInterval:   10 * time.Minute,
		Message:           "Too many requests, please try again later",
	}
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware limits requests per client IP
type RateLimitMiddleware struct {
	config   *RateLimitConfig
	limit    rate.Limit
	limiters map[string]*ipLimiter
	mutex    sync.Mutex
}

// NewRateLimitMiddleware creates the limiter; idle entries are evicted until ctx ends
func NewRateLimitMiddleware(ctx context.Context, config *RateLimitConfig) *RateLimitMiddleware {
	if config == nil {
		config = DefaultRateLimitConfig(0)
	}

	rlm := &RateLimitMiddleware{
		config:   config,
		limit:    rate.Every(time.Minute / time.Duration(config.RequestsPerMinute)),
		limiters: make(map[string]*ipLimiter),
	}

	go rlm.cleanupLimiters(ctx)

	return rlm
}

// Handler returns the middleware
func (rlm *RateLimitMiddleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rlm.shouldSkipPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := utils.GetClientIP(r)
			allowed, remaining, retryAfter := rlm.checkRateLimit(clientIP, time.Now())

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rlm.config.RequestsPerMinute))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				zerolog.Ctx(r.Context()).Warn().Str("client_ip", clientIP).Msg("Request blocked - rate limit exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				utils.WriteMessage(w, http.StatusTooManyRequests, rlm.config.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// checkRateLimit takes one token for ip. retryAfter is in whole seconds.
func (rlm *RateLimitMiddleware) checkRateLimit(ip string, now time.Time) (allowed bool, remaining int, retryAfter int) {
	rlm.mutex.Lock()
	defer rlm.mutex.Unlock()

	entry, exists := rlm.limiters[ip]
	if !exists {
		entry = &ipLimiter{limiter: rate.NewLimiter(rlm.limit, rlm.config.Burst)}
		rlm.limiters[ip] = entry
	}
	entry.lastSeen = now

	allowed = entry.limiter.AllowN(now, 1)

	remaining = int(entry.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}

	if !allowed {
		wait := time.Duration(float64(time.Second) / float64(rlm.limit))
		retryAfter = int(wait.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
	}

	return allowed, remaining, retryAfter
}

func (rlm *RateLimitMiddleware) shouldSkipPath(path string) bool {
	for _, skipPath := range rlm.config.SkipPaths {
		if path == skipPath {
			return true
		}
	}
	return false
}

func (rlm *RateLimitMiddleware) cleanupLimiters(ctx context.Context) {
	ticker := time.NewTicker(rlm.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rlm.evictIdle(now)
		}
	}
}

func (rlm *RateLimitMiddleware) evictIdle(now time.Time) int {
	rlm.mutex.Lock()
	defer rlm.mutex.Unlock()

	evicted := 0
	for ip, entry := range rlm.limiters {
		if now.Sub(entry.lastSeen) > rlm.config.IdleTimeout {
			delete(rlm.limiters, ip)
			evicted++
		}
	}
	return evicted
}
