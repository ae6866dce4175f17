package middleware

import (
	"fmt"
	"net/http"
)

// SecurityConfig lists the security headers set on every response
type SecurityConfig struct {
	// Content Security Policy; empty disables the header
	ContentSecurityPolicy string

	// HTTP Strict Transport Security
	HSTSMaxAge            int  // seconds, 0 disables HSTS
	HSTSIncludeSubdomains bool // add includeSubDomains

	FrameOptions       string // DENY, SAMEORIGIN or empty
	ContentTypeNosniff bool   // X-Content-Type-Options: nosniff
	ReferrerPolicy     string
}

// DefaultSecurityConfig returns the production headers. Inline styles stay
// allowed for the static pages.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		ContentSecurityPolicy: "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; object-src 'none'; frame-ancestors 'none'",
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
}

// DevelopmentSecurityConfig drops HSTS so plain HTTP keeps working locally
func DevelopmentSecurityConfig() *SecurityConfig {
	config := DefaultSecurityConfig()
	config.HSTSMaxAge = 0
	config.FrameOptions = "SAMEORIGIN"
	return config
}

// SecurityHeadersMiddleware sets the configured headers before the handler runs
func SecurityHeadersMiddleware(config *SecurityConfig) func(http.Handler) http.Handler {
	if config == nil {
		config = DefaultSecurityConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if config.ContentSecurityPolicy != "" {
				h.Set("Content-Security-Policy", config.ContentSecurityPolicy)
			}
			if config.HSTSMaxAge > 0 {
				h.Set("Strict-Transport-Security", formatHSTSHeader(config.HSTSMaxAge, config.HSTSIncludeSubdomains))
			}
			if config.FrameOptions != "" {
				h.Set("X-Frame-Options", config.FrameOptions)
			}
			if config.ContentTypeNosniff {
				h.Set("X-Content-Type-Options", "nosniff")
			}
			if config.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", config.ReferrerPolicy)
			}

			next.ServeHTTP(w, r)
		})
	}
}

func formatHSTSHeader(maxAge int, includeSubdomains bool) string {
	hsts := fmt.Sprintf("max-age=%d", maxAge)
	if includeSubdomains {
		hsts += "; includeSubDomains"
	}
	return hsts
}
