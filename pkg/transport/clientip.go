package transport

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the client address for rate-limit keying. The first
// entry of X-Forwarded-For wins when present (the gateway sets it);
// otherwise the connection's remote host is used.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
