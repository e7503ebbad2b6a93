// Package config loads the edge server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/platform-smith-labs/siteedge/apiclient"
	"github.com/platform-smith-labs/siteedge/locale"
)

// Config holds every setting the server reads at startup.
type Config struct {
	HTTPAddr        string        `env:"SITE_HTTP_ADDR"        envDefault:":3000"`
	SiteURL         string        `env:"SITE_URL"              envDefault:"http://localhost:3000"`
	APIInternalURL  string        `env:"API_INTERNAL_URL"`
	PublicAPIURL    string        `env:"PUBLIC_API_URL"`
	APITimeout      time.Duration `env:"API_TIMEOUT"           envDefault:"30s"`
	DefaultLocale   string        `env:"SITE_DEFAULT_LOCALE"   envDefault:"tr"`
	ShutdownTimeout time.Duration `env:"SITE_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// AllowedOrigins is a comma separated CORS allow list; empty denies all.
	AllowedOrigins []string `env:"SITE_ALLOWED_ORIGINS" envSeparator:","`

	// LegacyRedirects is a comma separated list of from=to pairs merged over
	// the built-in table.
	LegacyRedirects map[string]string `env:"SITE_LEGACY_REDIRECTS" envKeyValSeparator:"="`

	ContactRateLimit float64 `env:"CONTACT_RATE_LIMIT" envDefault:"0.2"`
	ContactRateBurst int     `env:"CONTACT_RATE_BURST" envDefault:"3"`

	// SiteConfigKeys are the backend config entries exposed by /content/site.
	SiteConfigKeys []string `env:"SITE_CONFIG_KEYS" envSeparator:"," envDefault:"contact.email,contact.phone,contact.address"`

	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT"   envDefault:"json"`
	MetricsPath string `env:"METRICS_PATH" envDefault:"/metrics"`
}

// Load reads optional .env files and then parses the environment. With no
// files it tries ./.env and ignores its absence.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// FromMap parses cfg from vars instead of the process environment.
func FromMap(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if _, ok := locale.Parse(c.DefaultLocale); !ok {
		errs = append(errs, fmt.Errorf("SITE_DEFAULT_LOCALE %q is not one of %v", c.DefaultLocale, locale.Supported))
	}
	if err := checkURL("SITE_URL", c.SiteURL, true); err != nil {
		errs = append(errs, err)
	}
	if err := checkURL("API_INTERNAL_URL", c.APIInternalURL, false); err != nil {
		errs = append(errs, err)
	}
	if err := checkURL("PUBLIC_API_URL", c.PublicAPIURL, false); err != nil {
		errs = append(errs, err)
	}
	if c.APITimeout <= 0 {
		errs = append(errs, fmt.Errorf("API_TIMEOUT must be positive, got %s", c.APITimeout))
	}
	if c.ContactRateLimit <= 0 || c.ContactRateBurst < 1 {
		errs = append(errs, fmt.Errorf("CONTACT_RATE_LIMIT and CONTACT_RATE_BURST must be positive"))
	}
	if !strings.HasPrefix(c.MetricsPath, "/") {
		errs = append(errs, fmt.Errorf("METRICS_PATH %q must start with /", c.MetricsPath))
	}
	for from, to := range c.LegacyRedirects {
		if !strings.HasPrefix(from, "/") || !strings.HasPrefix(to, "/") {
			errs = append(errs, fmt.Errorf("SITE_LEGACY_REDIRECTS entry %q=%q must map site paths", from, to))
		}
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q must be json or text", c.LogFormat))
	}

	return errors.Join(errs...)
}

func checkURL(name, raw string, required bool) error {
	if raw == "" {
		if required {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s %q must be an absolute http(s) URL", name, raw)
	}
	return nil
}

// Locale returns the configured default locale, falling back to the package
// default when the setting is invalid.
func (c Config) Locale() locale.Locale {
	if l, ok := locale.Parse(c.DefaultLocale); ok {
		return l
	}
	return locale.Default
}

// BackendURL is the base used for server-side backend calls.
func (c Config) BackendURL() string {
	return apiclient.ResolveBaseURL(apiclient.SideServer, c.APIInternalURL)
}

// Redirects returns the built-in legacy table with configured entries
// merged over it.
func (c Config) Redirects() locale.LegacyRedirects {
	table := locale.DefaultLegacyRedirects()
	for from, to := range c.LegacyRedirects {
		table[from] = to
	}
	return table
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(c Config, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}
