package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the caller's network origin from a request.
// The front-door proxy sets X-Forwarded-For; the first hop is the caller.
// Falls back to X-Real-IP and finally the socket address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
