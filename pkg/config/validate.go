package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateServer checks the settings the core service needs.
func (c *Config) ValidateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (set TASKRISER_JWT_SECRET or auth.jwt_secret_file)")
	}
	if c.Auth.SessionSecret == "" {
		return fmt.Errorf("auth.session_secret is required (set TASKRISER_SESSION_SECRET or auth.session_secret_file)")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	switch c.Storage.Type {
	case "memory":
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("storage.postgres.dsn is required for storage.type=postgres")
		}
	default:
		return fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type)
	}
	switch c.RateLimit.Store {
	case "memory":
	case "redis":
		if c.RateLimit.RedisAddr == "" {
			return fmt.Errorf("rate_limit.redis_addr is required for rate_limit.store=redis")
		}
	default:
		return fmt.Errorf("rate_limit.store must be \"memory\" or \"redis\", got %q", c.RateLimit.Store)
	}
	return nil
}

// ValidateGateway checks the settings the gateway needs.
func (c *Config) ValidateGateway() error {
	if c.Gateway.Port < 1 || c.Gateway.Port > 65535 {
		return fmt.Errorf("gateway.port must be between 1 and 65535, got %d", c.Gateway.Port)
	}
	if len(c.Gateway.Routes) == 0 {
		return fmt.Errorf("gateway.routes must define at least one route")
	}
	for _, r := range c.Gateway.Routes {
		if !strings.HasPrefix(r.Prefix, "/") {
			return fmt.Errorf("gateway route prefix %q must start with /", r.Prefix)
		}
		if err := validUpstream(r.Upstream); err != nil {
			return fmt.Errorf("gateway route %s: %w", r.Prefix, err)
		}
	}
	if c.Gateway.TasksUpstream != "" {
		if err := validUpstream(c.Gateway.TasksUpstream); err != nil {
			return fmt.Errorf("gateway.tasks_upstream: %w", err)
		}
		if c.Gateway.InternalKey == "" {
			return fmt.Errorf("gateway.internal_key is required when gateway.tasks_upstream is set")
		}
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (set TASKRISER_JWT_SECRET or auth.jwt_secret_file)")
	}
	return nil
}

func validUpstream(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid upstream URL %q: %w", s, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("upstream URL %q must use http or https", s)
	}
	if u.Host == "" {
		return fmt.Errorf("upstream URL %q has no host", s)
	}
	return nil
}
