package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with the full layered approach.
// If explicitPath is non-empty it must exist; otherwise the config
// file is discovered (TASKRISER_CONFIG, ./config.yaml,
// /etc/taskriser/config.yaml) and is optional.
func Load(explicitPath string) (Config, error) {
	cfg := Defaults()

	path, required := discoverPath(explicitPath)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if required || !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileRefs(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// discoverPath returns the config file path and whether its absence
// is an error.
func discoverPath(explicitPath string) (string, bool) {
	if explicitPath != "" {
		return explicitPath, true
	}
	if p := os.Getenv("TASKRISER_CONFIG"); p != "" {
		return p, true
	}
	for _, p := range []string{"config.yaml", filepath.Join("/etc", "taskriser", "config.yaml")} {
		if _, err := os.Stat(p); err == nil {
			return p, false
		}
	}
	return "", false
}

// applyEnvOverrides applies TASKRISER_* environment variables on top
// of file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TASKRISER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("TASKRISER_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("TASKRISER_SESSION_SECRET"); v != "" {
		cfg.Auth.SessionSecret = v
	}
	if v := os.Getenv("TASKRISER_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = d
		}
	}
	if v := os.Getenv("TASKRISER_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("TASKRISER_POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("TASKRISER_RATELIMIT_STORE"); v != "" {
		cfg.RateLimit.Store = v
	}
	if v := os.Getenv("TASKRISER_REDIS_ADDR"); v != "" {
		cfg.RateLimit.RedisAddr = v
	}
	if v := os.Getenv("TASKRISER_GATEWAY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = n
		}
	}
	if v := os.Getenv("TASKRISER_INTERNAL_KEY"); v != "" {
		cfg.Gateway.InternalKey = v
	}
	if v := os.Getenv("TASKRISER_TASKS_UPSTREAM"); v != "" {
		cfg.Gateway.TasksUpstream = v
	}
	if v := os.Getenv("TASKRISER_GATEWAY_ROUTES"); v != "" {
		if routes := parseRoutes(v); len(routes) > 0 {
			cfg.Gateway.Routes = routes
		}
	}
	if v := os.Getenv("TASKRISER_METRICS_ENABLED"); v != "" {
		cfg.Observability.Metrics.Enabled = v == "true" || v == "1"
	}
}

// parseRoutes parses "prefix=url,prefix=url" route lists from the
// environment.
func parseRoutes(s string) []RouteConfig {
	var routes []RouteConfig
	for _, pair := range strings.Split(s, ",") {
		prefix, upstream, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || prefix == "" || upstream == "" {
			continue
		}
		routes = append(routes, RouteConfig{Prefix: prefix, Upstream: upstream})
	}
	return routes
}

// resolveFileRefs loads secrets referenced by *_file fields. A direct
// value takes precedence over its file reference.
func resolveFileRefs(cfg *Config) error {
	refs := []struct {
		name string
		file string
		dst  *string
	}{
		{"jwt_secret", cfg.Auth.JWTSecretFile, &cfg.Auth.JWTSecret},
		{"session_secret", cfg.Auth.SessionSecretFile, &cfg.Auth.SessionSecret},
		{"internal_key", cfg.Gateway.InternalKeyFile, &cfg.Gateway.InternalKey},
		{"dsn", cfg.Storage.Postgres.DSNFile, &cfg.Storage.Postgres.DSN},
	}
	for _, r := range refs {
		if r.file == "" || *r.dst != "" {
			continue
		}
		data, err := os.ReadFile(r.file)
		if err != nil {
			return fmt.Errorf("reading %s file %s: %w", r.name, r.file, err)
		}
		*r.dst = strings.TrimSpace(string(data))
	}
	return nil
}
