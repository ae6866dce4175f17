package utils

import (
	"net"
	"net/http"
	"strings"
)

// GetClientIP returns the client address, honouring proxy headers
func GetClientIP(r *http.Request) string {
	// first hop of the proxy chain is the client
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
