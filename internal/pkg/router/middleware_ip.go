package router

import (
	"net"
	"net/http"
	"strings"
)

// middlewareIP rewrites RemoteAddr to the client address reported by a
// trusted proxy header, when it parses as an IP.
func middlewareIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rip := realIP(r); rip != "" {
			r.RemoteAddr = rip
		}
		next.ServeHTTP(w, r)
	})
}

func realIP(r *http.Request) string {
	for _, h := range []string{"True-Client-IP", "X-Real-IP", "X-Forwarded-For"} {
		v, _, _ := strings.Cut(r.Header.Get(h), ",")
		if ip := strings.TrimSpace(v); net.ParseIP(ip) != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return ""
}
