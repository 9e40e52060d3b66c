package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// Unknown is the shared key for requests without a derivable address.
const Unknown = "unknown"

// ClientID identifies the caller: the first X-Forwarded-For entry, then the
// host part of RemoteAddr, then Unknown.
func ClientID(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	if addr != "" {
		return addr
	}
	return Unknown
}
