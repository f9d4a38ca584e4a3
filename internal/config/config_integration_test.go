package config

import (
	"path/filepath"
	"testing"
)

func TestFullWorkflow(t *testing.T) {
	tmp := t.TempDir()

	// 1. Write default config
	cfgPath := filepath.Join(tmp, "phimgo", "config.toml")
	if err := WriteDefault(cfgPath); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	// 2. Set env vars (t.Setenv auto-restores on cleanup)
	t.Setenv("PHIMGO_DATA_DIR", "/srv/phimgo")
	t.Setenv("PHIMGO_LOG_LEVEL", "debug")

	// 3. Load with validation
	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// 4. Verify env substitution worked
	if cfg.Store.Path != "/srv/phimgo/phimgo.db" {
		t.Errorf("expected data dir substituted, got %q", cfg.Store.Path)
	}
	if cfg.Server.LogLevel != "debug" {
		t.Errorf("expected debug log level, got %q", cfg.Server.LogLevel)
	}

	// 5. Verify file values and defaults
	if cfg.Server.Port != 8485 {
		t.Errorf("expected port 8485, got %d", cfg.Server.Port)
	}
	if cfg.Views.MaxViews != 1000 {
		t.Errorf("expected 1000 max views, got %d", cfg.Views.MaxViews)
	}
}

func TestFullWorkflow_NoEnvironment(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteDefault(cfgPath); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	t.Setenv("PHIMGO_DATA_DIR", "")
	t.Setenv("PHIMGO_LOG_LEVEL", "")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Path != "./data/phimgo.db" {
		t.Errorf("expected fallback data dir, got %q", cfg.Store.Path)
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("expected info log level, got %q", cfg.Server.LogLevel)
	}
}
