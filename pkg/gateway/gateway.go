// Package gateway implements the TaskRiser edge proxy. It forwards API
// traffic to upstream services by path prefix, leaving credentials
// untouched for the upstreams to verify, except for one verified route
// where the gateway checks the bearer token itself and forwards a
// short-lived signed assertion instead.
package gateway

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskriser/taskriser/pkg/auth/token"
	"github.com/taskriser/taskriser/pkg/config"
	"github.com/taskriser/taskriser/pkg/transport"
)

// AssertionTTL bounds how long a minted gateway assertion stays valid.
// It only needs to survive one proxied round trip.
const AssertionTTL = 30 * time.Second

// route is one prefix -> upstream mapping with the URL pre-parsed.
type route struct {
	prefix   string
	upstream *url.URL
}

// Gateway is the edge proxy service.
type Gateway struct {
	routes   []route
	verifier *token.Issuer
	internal *token.Issuer
	tasks    *url.URL
	client   *http.Client
	logger   *slog.Logger
	metrics  config.MetricsConfig
}

// New creates a Gateway from validated configuration. Routes are
// matched longest prefix first regardless of config order.
func New(cfg config.Config, logger *slog.Logger) (*Gateway, error) {
	verifier, err := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	var internal *token.Issuer
	var tasks *url.URL
	if cfg.Gateway.TasksUpstream != "" {
		internal, err = token.NewIssuer(cfg.Gateway.InternalKey, AssertionTTL)
		if err != nil {
			return nil, err
		}
		tasks, err = url.Parse(cfg.Gateway.TasksUpstream)
		if err != nil {
			return nil, fmt.Errorf("parsing tasks upstream: %w", err)
		}
	}

	routes := make([]route, 0, len(cfg.Gateway.Routes))
	for _, rc := range cfg.Gateway.Routes {
		u, err := url.Parse(rc.Upstream)
		if err != nil {
			return nil, fmt.Errorf("parsing upstream for %s: %w", rc.Prefix, err)
		}
		routes = append(routes, route{prefix: rc.Prefix, upstream: u})
	}
	sort.Slice(routes, func(i, j int) bool {
		return len(routes[i].prefix) > len(routes[j].prefix)
	})

	if logger == nil {
		logger = slog.Default()
	}

	return &Gateway{
		routes:   routes,
		verifier: verifier,
		internal: internal,
		tasks:    tasks,
		client:   &http.Client{Timeout: cfg.Gateway.UpstreamTimeout},
		logger:   logger,
		metrics:  cfg.Observability.Metrics,
	}, nil
}

// Handler builds the gateway's HTTP handler.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	if g.tasks != nil {
		mux.HandleFunc("GET /api/my-tasks", g.handleMyTasks)
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if g.metrics.Enabled {
		mux.Handle("GET "+g.metrics.Path, promhttp.Handler())
	}
	mux.HandleFunc("/", g.handleProxy)

	return transport.Chain(
		transport.Recovery(),
		transport.RequestID(),
		transport.Logging(g.logger),
	)(mux)
}

// match returns the longest route prefix covering path, or nil. A
// prefix matches the path itself or any path segment below it.
func (g *Gateway) match(path string) *route {
	for i := range g.routes {
		r := &g.routes[i]
		if path == r.prefix || strings.HasPrefix(path, strings.TrimSuffix(r.prefix, "/")+"/") {
			return r
		}
	}
	return nil
}
