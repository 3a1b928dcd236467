package middlewares

import (
	"net"
	"net/http"
	"strings"
)

// Proxy headers consulted for the original client address, most trusted
// first. The first header carrying a parseable IP wins.
var clientIPHeaders = []string{"True-Client-IP", "X-Real-IP", "X-Forwarded-For"}

// ClientIPMiddleware rewrites RemoteAddr to "IP:port" using the
// proxy-reported client IP, so everything downstream, the per-IP throttle
// included, keys on the actual client rather than the proxy hop.
func ClientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := clientIP(r); ip != "" {
			if _, port, err := net.SplitHostPort(r.RemoteAddr); err == nil && port != "" {
				r.RemoteAddr = net.JoinHostPort(ip, port)
			} else {
				r.RemoteAddr = net.JoinHostPort(ip, "0")
			}
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	for _, header := range clientIPHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}

		// X-Forwarded-For lists one hop per entry; the client comes first.
		if comma := strings.IndexByte(value, ','); comma >= 0 {
			value = value[:comma]
		}

		if parsed := net.ParseIP(strings.TrimSpace(value)); parsed != nil {
			return parsed.String()
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if parsed := net.ParseIP(host); parsed != nil {
		return parsed.String()
	}

	return ""
}
