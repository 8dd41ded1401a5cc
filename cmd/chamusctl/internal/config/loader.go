package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "CHAMUS_"

// Base addresses of the catalog API per environment.
const (
	EnvironmentLocal      = "local"
	EnvironmentProduction = "production"

	LocalAPIURL      = "http://localhost:8000"
	ProductionAPIURL = "https://chamus.restteach.com"
)

// Config is the resolved chamusctl configuration.
type Config struct {
	Environment     string          `koanf:"environment"`
	APIURL          string          `koanf:"api_url"`
	CredentialsPath string          `koanf:"credentials_path"`
	Log             LogConfig       `koanf:"log"`
	Dashboard       DashboardConfig `koanf:"dashboard"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// DashboardConfig controls `chamusctl serve`.
type DashboardConfig struct {
	Addr string `koanf:"addr"`
	// CookieKey signs the dashboard cookies. A random key is generated per
	// process when empty, which invalidates pending redirects on restart.
	CookieKey      string   `koanf:"cookie_key"`
	AllowedOrigins []string `koanf:"allowed_origins"`
	// LoginRate is the number of login attempts accepted per minute.
	LoginRate int `koanf:"login_rate"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"environment":               EnvironmentLocal,
		"api_url":                   "",
		"credentials_path":          "",
		"log.level":                 "warn",
		"log.format":                "text",
		"dashboard.addr":            "127.0.0.1:8090",
		"dashboard.cookie_key":      "",
		"dashboard.allowed_origins": []string{},
		"dashboard.login_rate":      10,
	}
}

// DefaultConfigPath returns ~/.chamus/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".chamus", "config.yaml"), nil
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// File is a YAML config file. A missing file is an error only when
	// Required is set.
	File     string
	Required bool
	// Environ is the environment to read; nil uses os.Environ.
	Environ []string
	// Overrides take precedence over every other source, keyed by
	// dotted config path. Flags land here.
	Overrides map[string]any
}

// Load resolves configuration with priority flags > env > file > defaults.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(Defaults()), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if opts.File != "" {
		if _, err := os.Stat(opts.File); err == nil || opts.Required {
			if err := k.Load(file.Provider(opts.File), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", opts.File, err)
			}
		}
	}

	if err := loadEnv(k, opts.Environ); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(mapProvider(opts.Overrides), nil); err != nil {
			return nil, fmt.Errorf("load overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Dashboard.AllowedOrigins = splitList(cfg.Dashboard.AllowedOrigins)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnv maps CHAMUS_DASHBOARD_COOKIE_KEY to dashboard.cookie_key. Only
// the section separator becomes a dot since leaf keys contain underscores.
func loadEnv(k *koanf.Koanf, environ []string) error {
	transform := func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		for _, section := range []string{"log", "dashboard"} {
			if strings.HasPrefix(s, section+"_") {
				return section + "." + strings.TrimPrefix(s, section+"_")
			}
		}
		return s
	}

	if environ == nil {
		return k.Load(env.Provider(EnvPrefix, ".", transform), nil)
	}

	values := map[string]any{}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		values[transform(key)] = value
	}
	return k.Load(mapProvider(values), nil)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvironmentLocal, EnvironmentProduction:
	default:
		return fmt.Errorf("invalid environment %q: expected %q or %q", c.Environment, EnvironmentLocal, EnvironmentProduction)
	}

	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid api_url %q: must be an absolute http(s) URL", c.APIURL)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q: expected text or json", c.Log.Format)
	}

	if c.Dashboard.LoginRate <= 0 {
		return errors.New("dashboard.login_rate must be positive")
	}
	if c.Dashboard.CookieKey != "" && len(c.Dashboard.CookieKey) < 32 {
		return errors.New("dashboard.cookie_key must be at least 32 characters")
	}
	return nil
}

// BaseURL returns the catalog API address: api_url when set, otherwise the
// address of the selected environment.
func (c *Config) BaseURL() string {
	if c.APIURL != "" {
		return strings.TrimRight(c.APIURL, "/")
	}
	if c.Environment == EnvironmentProduction {
		return ProductionAPIURL
	}
	return LocalAPIURL
}

// splitList expands comma separated entries, as env values arrive as a
// single string.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// mapProvider loads a flat map of dotted keys into koanf.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("config: map provider does not support ReadBytes")
}

func (m mapProvider) Read() (map[string]any, error) {
	return maps.Unflatten(m, "."), nil
}
