package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/taskriser/taskriser/pkg/api"
	"github.com/taskriser/taskriser/pkg/debug"
	"github.com/taskriser/taskriser/pkg/observability"
	"github.com/taskriser/taskriser/pkg/transport"
)

// hopHeaders are connection-scoped headers that must not be forwarded.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// handleProxy forwards the request to the upstream matching its path
// prefix. The Authorization header passes through untouched; upstreams
// own credential verification on proxied routes.
func (g *Gateway) handleProxy(w http.ResponseWriter, r *http.Request) {
	rt := g.match(r.URL.Path)
	if rt == nil {
		g.logger.Debug("no route for path", "method", r.Method, "path", r.URL.Path)
		transport.WriteAPIError(w, api.NewNotFoundError(
			fmt.Sprintf("cannot %s %s", r.Method, r.URL.Path)))
		return
	}
	g.forward(w, r, rt.prefix, rt.upstream, r.URL.Path, nil)
}

// forward sends the request to the given upstream and relays the
// response verbatim. extraHeaders are set on the upstream request after
// the copied ones, so they win over client-supplied values.
func (g *Gateway) forward(w http.ResponseWriter, r *http.Request, prefix string, upstream *url.URL, path string, extraHeaders http.Header) {
	target := *upstream
	target.Path = path
	target.RawQuery = r.URL.RawQuery

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
	if err != nil {
		g.logger.Error("building upstream request", "path", path, "error", err)
		transport.WriteAPIError(w, api.NewServerError("proxy error"))
		return
	}

	copyHeaders(req.Header, r.Header)
	for _, h := range hopHeaders {
		req.Header.Del(h)
	}
	// The gateway is the trust boundary for client addressing: any
	// client-supplied chain is replaced with the direct peer so the
	// core's rate-limit keys cannot be spoofed.
	req.Header.Set("X-Forwarded-For", clientHost(r))
	if rid := transport.RequestIDFromContext(r.Context()); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}
	for k, vs := range extraHeaders {
		req.Header[k] = vs
	}

	debug.Log("gateway", "forwarding upstream", "method", r.Method, "target", debug.Truncate(target.String(), 200))

	start := time.Now()
	resp, err := g.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		g.logger.Error("upstream request failed",
			"prefix", prefix,
			"upstream", upstream.String(),
			"error", err,
		)
		observability.UpstreamRequestsTotal.WithLabelValues(prefix, "error").Inc()
		if errors.Is(err, context.Canceled) {
			// Client went away; no response will be read.
			return
		}
		transport.WriteAPIError(w, api.NewBadGatewayError("upstream service unavailable"))
		return
	}
	defer resp.Body.Close()

	observability.UpstreamRequestsTotal.WithLabelValues(prefix, statusClass(resp.StatusCode)).Inc()
	observability.UpstreamLatency.WithLabelValues(prefix).Observe(elapsed.Seconds())
	debug.Trace("gateway", "upstream response", "status", resp.StatusCode, "elapsed_ms", elapsed.Milliseconds())

	copyHeaders(w.Header(), resp.Header)
	for _, h := range hopHeaders {
		w.Header().Del(h)
	}
	w.WriteHeader(resp.StatusCode)
	io.Copy(w, resp.Body)
}

// clientHost is the connection's remote host without the port.
func clientHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func copyHeaders(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
