// Package config provides unified configuration for the TaskRiser
// services.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (TASKRISER_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the TaskRiser services.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Storage       StorageConfig       `yaml:"storage"`
	Gateway       GatewayConfig       `yaml:"gateway"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings for the core service.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8081
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 30s
}

// AuthConfig holds token, session, and lockout settings.
type AuthConfig struct {
	// JWTSecret signs login tokens. Required; missing secret is a
	// fatal startup condition.
	JWTSecret     string `yaml:"jwt_secret"`
	JWTSecretFile string `yaml:"jwt_secret_file"` // _file variant for jwt_secret

	// TokenTTL is the login token lifetime. Default: 1h.
	TokenTTL time.Duration `yaml:"token_ttl"`

	// SessionSecret authenticates session cookies. Separate from the
	// token secret so the two credential surfaces can be rotated
	// independently. Required by the core service.
	SessionSecret     string `yaml:"session_secret"`
	SessionSecretFile string `yaml:"session_secret_file"` // _file variant

	// SessionTTL is the session lifetime. Default: 24h.
	SessionTTL time.Duration `yaml:"session_ttl"`

	// LockoutThreshold is the failed-login count that locks an account.
	// Default: 5.
	LockoutThreshold int `yaml:"lockout_threshold"`

	// LockoutWindow is the trailing window for counting failures.
	// Default: 15m.
	LockoutWindow time.Duration `yaml:"lockout_window"`
}

// RateLimitConfig holds limiter settings.
type RateLimitConfig struct {
	// Store selects the counter backend: "memory" or "redis".
	Store string `yaml:"store"` // default: "memory"

	// RedisAddr is the redis host:port, required for store=redis.
	RedisAddr string `yaml:"redis_addr"`

	// General limits apply per client IP to all API routes.
	GeneralMax    int           `yaml:"general_max"`    // default: 5
	GeneralWindow time.Duration `yaml:"general_window"` // default: 60s

	// Login limits apply per client IP to the login endpoint only.
	LoginMax    int           `yaml:"login_max"`    // default: 5
	LoginWindow time.Duration `yaml:"login_window"` // default: 5m
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// GatewayConfig holds the edge proxy settings.
type GatewayConfig struct {
	Port int `yaml:"port"` // default: 8080

	// Routes maps path prefixes to upstream base URLs.
	Routes []RouteConfig `yaml:"routes"`

	// InternalKey signs the gateway's short-lived identity assertions
	// for the internal tasks route. Must match the core service's key.
	InternalKey     string `yaml:"internal_key"`
	InternalKeyFile string `yaml:"internal_key_file"` // _file variant

	// TasksUpstream is the core service base URL used by the verified
	// internal tasks route.
	TasksUpstream string `yaml:"tasks_upstream"`

	// UpstreamTimeout bounds each proxied call. Default: 30s.
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
}

// RouteConfig is one prefix -> upstream mapping.
type RouteConfig struct {
	Prefix   string `yaml:"prefix"`
	Upstream string `yaml:"upstream"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8081,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL:         time.Hour,
			SessionTTL:       24 * time.Hour,
			LockoutThreshold: 5,
			LockoutWindow:    15 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Store:         "memory",
			GeneralMax:    5,
			GeneralWindow: 60 * time.Second,
			LoginMax:      5,
			LoginWindow:   5 * time.Minute,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		Gateway: GatewayConfig{
			Port:            8080,
			UpstreamTimeout: 30 * time.Second,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
