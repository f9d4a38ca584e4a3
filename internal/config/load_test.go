package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return cfgPath
}

func TestLoad_Valid(t *testing.T) {
	cfgPath := writeConfig(t, `
[server]
port = 8080

[store]
backend = "memory"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("expected memory backend, got %s", cfg.Store.Backend)
	}
}

func TestLoad_MissingEnvVar(t *testing.T) {
	os.Unsetenv("MISSING_KEY")
	cfgPath := writeConfig(t, `
[source]
url = "${MISSING_KEY}"
`)

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("expected error for missing env var")
	}
	if !strings.Contains(err.Error(), "MISSING_KEY") {
		t.Errorf("expected MISSING_KEY in error, got %v", err)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	cfgPath := writeConfig(t, `
[server]
port = 99999
`)

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
	if !strings.Contains(err.Error(), "server.port") {
		t.Errorf("expected server.port in error, got %v", err)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfgPath := writeConfig(t, ``)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected default host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8485 {
		t.Errorf("expected default port 8485, got %d", cfg.Server.Port)
	}
	if cfg.Store.Backend != BackendSQLite || cfg.Store.Path != "./data/phimgo.db" {
		t.Errorf("unexpected store defaults: %+v", cfg.Store)
	}
	if cfg.Listing.DefaultPageSize != 20 || cfg.Listing.MaxPageSize != 100 || cfg.Listing.RetryAttempts != 3 {
		t.Errorf("unexpected listing defaults: %+v", cfg.Listing)
	}
	if cfg.Views.IdleTTL != 30*time.Minute {
		t.Errorf("expected 30m idle ttl, got %s", cfg.Views.IdleTTL)
	}
	if cfg.Stats.Schedule != "@daily" {
		t.Errorf("expected @daily schedule, got %s", cfg.Stats.Schedule)
	}
}

func TestLoad_BoltDefaultPath(t *testing.T) {
	cfgPath := writeConfig(t, `
[store]
backend = "bolt"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Path != "./data/phimgo.bolt" {
		t.Errorf("expected bolt default path, got %s", cfg.Store.Path)
	}
}

func TestLoad_Durations(t *testing.T) {
	cfgPath := writeConfig(t, `
[views]
idle_ttl = "5m"

[source]
cache_ttl = "90s"

[events]
retention = "48h"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Views.IdleTTL != 5*time.Minute {
		t.Errorf("expected 5m, got %s", cfg.Views.IdleTTL)
	}
	if cfg.Source.CacheTTL != 90*time.Second {
		t.Errorf("expected 90s, got %s", cfg.Source.CacheTTL)
	}
	if cfg.Events.Retention != 48*time.Hour {
		t.Errorf("expected 48h, got %s", cfg.Events.Retention)
	}
}

func TestLoadWithoutValidation(t *testing.T) {
	cfgPath := writeConfig(t, `
[server]
port = 99999
`)

	cfg, err := LoadWithoutValidation(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 99999 {
		t.Errorf("expected port 99999, got %d", cfg.Server.Port)
	}
}

func TestLoad_EnvVarDefault(t *testing.T) {
	os.Unsetenv("OPTIONAL_VAR")
	cfgPath := writeConfig(t, `
[server]
host = "${OPTIONAL_VAR:-localhost}"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("expected host localhost, got %s", cfg.Server.Host)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	os.Unsetenv("PHIMGO_TEST_DOTENV_HOST")
	t.Cleanup(func() { os.Unsetenv("PHIMGO_TEST_DOTENV_HOST") })

	cfgPath := writeConfig(t, `
[server]
host = "${PHIMGO_TEST_DOTENV_HOST}"
`)
	envPath := filepath.Join(filepath.Dir(cfgPath), ".env")
	if err := os.WriteFile(envPath, []byte("PHIMGO_TEST_DOTENV_HOST=10.0.0.5\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "10.0.0.5" {
		t.Errorf("expected host from .env, got %s", cfg.Server.Host)
	}
}

func TestLoad_DotEnvDoesNotOverride(t *testing.T) {
	t.Setenv("PHIMGO_TEST_DOTENV_PORT_HOST", "from-env")

	cfgPath := writeConfig(t, `
[server]
host = "${PHIMGO_TEST_DOTENV_PORT_HOST}"
`)
	envPath := filepath.Join(filepath.Dir(cfgPath), ".env")
	if err := os.WriteFile(envPath, []byte("PHIMGO_TEST_DOTENV_PORT_HOST=from-file\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "from-env" {
		t.Errorf("expected environment to win, got %s", cfg.Server.Host)
	}
}
