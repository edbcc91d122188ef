// Package server implements the TaskRiser core API: registration and
// login, the quest board, hunter profiles and EXP progression, and the
// public ranking. All protection layers (rate limiting, CSRF, the
// credential chain) are wired here around a plain ServeMux.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskriser/taskriser/pkg/api"
	"github.com/taskriser/taskriser/pkg/auth"
	"github.com/taskriser/taskriser/pkg/auth/bearer"
	"github.com/taskriser/taskriser/pkg/auth/session"
	"github.com/taskriser/taskriser/pkg/auth/token"
	"github.com/taskriser/taskriser/pkg/config"
	"github.com/taskriser/taskriser/pkg/csrf"
	"github.com/taskriser/taskriser/pkg/observability"
	"github.com/taskriser/taskriser/pkg/ratelimit"
	"github.com/taskriser/taskriser/pkg/storage"
	"github.com/taskriser/taskriser/pkg/transport"
)

// publicEndpoints are reachable without a credential. Everything else
// under /api requires a session or bearer token.
var publicEndpoints = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/api/csrf/token",
	"/api/ranking",
}

// Server is the core API service.
type Server struct {
	cfg      config.Config
	store    storage.Store
	issuer   *token.Issuer
	internal *token.Issuer
	sessions *session.Manager
	lockout  *ratelimit.LockoutTracker
	logger   *slog.Logger

	general *ratelimit.Limiter
	login   *ratelimit.Limiter
	guard   *csrf.Guard
}

// New creates a Server from validated configuration. The counter store
// backs both rate limiters; the internal issuer is nil unless a gateway
// key is configured.
func New(cfg config.Config, store storage.Store, counters ratelimit.CounterStore, logger *slog.Logger) (*Server, error) {
	issuer, err := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	var internal *token.Issuer
	if cfg.Gateway.InternalKey != "" {
		internal, err = token.NewIssuer(cfg.Gateway.InternalKey, 0)
		if err != nil {
			return nil, err
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:      cfg,
		store:    store,
		issuer:   issuer,
		internal: internal,
		sessions: session.NewManager(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL),
		lockout:  ratelimit.NewLockoutTracker(cfg.Auth.LockoutThreshold, cfg.Auth.LockoutWindow),
		logger:   logger,
		general:  ratelimit.NewLimiter(counters, cfg.RateLimit.GeneralMax, cfg.RateLimit.GeneralWindow),
		login:    ratelimit.NewLimiter(counters, cfg.RateLimit.LoginMax, cfg.RateLimit.LoginWindow),
		guard:    csrf.NewGuard(csrf.DefaultExemptPaths),
	}, nil
}

// Handler builds the full HTTP handler: API routes behind the
// protection stack, plus health, metrics, and the gateway-internal
// route outside it.
func (s *Server) Handler() http.Handler {
	apiMux := http.NewServeMux()
	s.registerRoutes(apiMux)

	chain := &auth.Chain{Resolvers: []auth.Resolver{
		s.sessions,
		bearer.New(s.issuer),
	}}

	protected := transport.Chain(
		observability.MetricsMiddleware("core"),
		transport.Recovery(),
		transport.RequestID(),
		transport.Logging(s.logger),
		ratelimit.Middleware(s.general, "general", nil),
		s.guard.Middleware(),
		auth.Middleware(chain, publicEndpoints),
	)(apiMux)

	base := transport.Chain(
		transport.Recovery(),
		transport.RequestID(),
		transport.Logging(s.logger),
	)

	root := http.NewServeMux()
	root.Handle("/api/", protected)
	root.Handle("GET /internal/tasks", base(http.HandlerFunc(s.handleInternalTasks)))
	root.HandleFunc("GET /healthz", s.handleHealth)
	if s.cfg.Observability.Metrics.Enabled {
		root.Handle("GET "+s.cfg.Observability.Metrics.Path, promhttp.Handler())
	}
	root.Handle("/", base(http.HandlerFunc(handleNotFound)))
	return root
}

// registerRoutes wires the API endpoints. The login route applies its
// own stricter limiter inside the handler, after the lockout check, so
// a locked account always answers with its remaining lockout time.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/csrf/token", s.handleCSRFToken)

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PUT /api/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)

	mux.HandleFunc("GET /api/users/me", s.handleMe)
	mux.HandleFunc("PUT /api/users/profile", s.handleUpdateProfile)
	mux.HandleFunc("POST /api/users/exp", s.handleAddExp)
	mux.HandleFunc("GET /api/ranking", s.handleRanking)

	// Unmatched API paths answer with the structured envelope instead of
	// the mux's plain-text 404.
	mux.HandleFunc("/api/", handleNotFound)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	transport.WriteAPIError(w, api.NewNotFoundError(
		fmt.Sprintf("cannot %s %s", r.Method, r.URL.Path)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
