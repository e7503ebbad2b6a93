package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/platform-smith-labs/siteedge/apiclient"
	"github.com/platform-smith-labs/siteedge/locale"
)

// TestFromMap_Defaults verifies the defaults when nothing is set
func TestFromMap_Defaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}

	if cfg.HTTPAddr != ":3000" {
		t.Errorf("Expected :3000, got %s", cfg.HTTPAddr)
	}
	if cfg.APITimeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %s", cfg.APITimeout)
	}
	if cfg.Locale() != locale.Turkish {
		t.Errorf("Expected tr, got %s", cfg.Locale())
	}
	if cfg.BackendURL() != apiclient.DefaultInternalURL {
		t.Errorf("Expected %s, got %s", apiclient.DefaultInternalURL, cfg.BackendURL())
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("Expected no CORS origins, got %v", cfg.AllowedOrigins)
	}
	if len(cfg.SiteConfigKeys) != 3 {
		t.Errorf("Expected 3 default site config keys, got %v", cfg.SiteConfigKeys)
	}
}

// TestFromMap_Overrides verifies every variable is read
func TestFromMap_Overrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"SITE_HTTP_ADDR":        ":8080",
		"SITE_URL":              "https://www.example.com.tr",
		"API_INTERNAL_URL":      "http://backend:8000/",
		"PUBLIC_API_URL":        "https://api.example.com.tr",
		"API_TIMEOUT":           "5s",
		"SITE_DEFAULT_LOCALE":   "en",
		"SITE_ALLOWED_ORIGINS":  "https://a.example,https://b.example",
		"SITE_LEGACY_REDIRECTS": "/eski=/tr/yeni,/hakkimizda=/tr/kurumsal",
		"CONTACT_RATE_LIMIT":    "1",
		"CONTACT_RATE_BURST":    "10",
		"LOG_LEVEL":             "debug",
		"LOG_FORMAT":            "text",
		"METRICS_PATH":          "/internal/metrics",
	})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}

	if cfg.Locale() != locale.English {
		t.Errorf("Expected en, got %s", cfg.Locale())
	}
	if cfg.BackendURL() != "http://backend:8000" {
		t.Errorf("Expected trimmed backend url, got %s", cfg.BackendURL())
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("Expected 2 origins, got %v", cfg.AllowedOrigins)
	}

	redirects := cfg.Redirects()
	if redirects["/eski"] != "/tr/yeni" {
		t.Errorf("Expected configured redirect, got %q", redirects["/eski"])
	}
	if redirects["/hakkimizda"] != "/tr/kurumsal" {
		t.Errorf("Expected override of built-in redirect, got %q", redirects["/hakkimizda"])
	}
	if _, ok := redirects["/iletisim"]; !ok {
		t.Error("Expected built-in redirects to be kept")
	}
}

// TestValidate verifies invalid settings are rejected together
func TestValidate(t *testing.T) {
	_, err := FromMap(map[string]string{
		"SITE_DEFAULT_LOCALE": "de",
		"API_INTERNAL_URL":    "backend:8000",
		"LOG_FORMAT":          "xml",
		"LOG_LEVEL":           "loud",
		"METRICS_PATH":        "metrics",
	})
	if err == nil {
		t.Fatal("Expected validation error")
	}

	for _, want := range []string{"SITE_DEFAULT_LOCALE", "API_INTERNAL_URL", "LOG_FORMAT", "LOG_LEVEL", "METRICS_PATH"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %s, got %v", want, err)
		}
	}

	if _, err := FromMap(map[string]string{"API_TIMEOUT": "soon"}); err == nil {
		t.Error("Expected parse error for bad duration")
	}
}

// TestLoad verifies .env files are applied before parsing
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.env")
	if err := os.WriteFile(path, []byte("SITE_DEFAULT_LOCALE=en\nSITE_HTTP_ADDR=:9999\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// godotenv never overrides variables that are already set
	t.Setenv("SITE_HTTP_ADDR", ":7000")
	t.Setenv("SITE_DEFAULT_LOCALE", "")
	os.Unsetenv("SITE_DEFAULT_LOCALE")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultLocale != "en" {
		t.Errorf("Expected locale from file, got %s", cfg.DefaultLocale)
	}
	if cfg.HTTPAddr != ":7000" {
		t.Errorf("Expected process env to win, got %s", cfg.HTTPAddr)
	}

	if _, err := Load(filepath.Join(dir, "missing.env")); err == nil {
		t.Error("Expected error for missing explicit env file")
	}
}

// TestNewLogger verifies level and format selection
func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Config{LogLevel: "warn", LogFormat: "text"}, &buf)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown", "locale", "tr")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Expected info to be filtered at warn level")
	}
	if !strings.Contains(out, "locale=tr") {
		t.Errorf("Expected text output, got %s", out)
	}

	buf.Reset()
	logger, _ = NewLogger(Config{LogLevel: "info", LogFormat: "json"}, &buf)
	logger.Info("hello")
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("Expected JSON output, got %s", buf.String())
	}
}
