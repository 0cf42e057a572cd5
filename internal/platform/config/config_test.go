package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("unexpected default base URL %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("unexpected default timeout %v", cfg.API.Timeout)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache disabled by default")
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("unexpected default cache TTL %v", cfg.Cache.TTL)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("unexpected default log level %q", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  base_url: https://crm.example.com
  timeout: 5s
cache:
  enabled: false
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "https://crm.example.com" {
		t.Errorf("base URL %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("timeout %v", cfg.API.Timeout)
	}
	if cfg.Cache.Enabled {
		t.Error("cache.enabled not overridden")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level %q", cfg.Logging.Level)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("cache TTL %v", cfg.Cache.TTL)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("CORDIAL_API_BASE_URL", "https://env.example.com")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "https://env.example.com" {
		t.Errorf("environment override ignored, got %q", cfg.API.BaseURL)
	}
}
