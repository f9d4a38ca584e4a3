package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_DefaultsValid(t *testing.T) {
	errs := Default().Validate()
	assert.Empty(t, errs, "expected no errors for default config")
}

func TestValidate_ZeroValueValid(t *testing.T) {
	cfg := &Config{}
	assert.Empty(t, cfg.Validate())
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Port: 99999}}
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "server.port"), "expected port error, got %v", errs)
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := &Config{Server: ServerConfig{LogLevel: "verbose"}}
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "log_level"), "expected log_level error, got %v", errs)
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := &Config{Server: ServerConfig{LogFormat: "xml"}}
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "log_format"), "expected log_format error, got %v", errs)
}

func TestValidate_Store(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Backend: "postgres"}}
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "store.backend"), "expected backend error, got %v", errs)

	cfg = &Config{Store: StoreConfig{Backend: BackendBolt}}
	errs = cfg.Validate()
	assert.True(t, containsErrorBoth(errs, "store.path", "bolt"), "expected path error, got %v", errs)

	cfg = &Config{Store: StoreConfig{Backend: BackendMemory}}
	assert.Empty(t, cfg.Validate())
}

func TestValidate_PageSizes(t *testing.T) {
	cfg := &Config{Listing: ListingConfig{DefaultPageSize: 50, MaxPageSize: 20}}
	errs := cfg.Validate()
	assert.True(t, containsErrorBoth(errs, "default_page_size", "max_page_size"), "expected page size error, got %v", errs)

	cfg = &Config{Listing: ListingConfig{RetryAttempts: -1}}
	errs = cfg.Validate()
	assert.True(t, containsError(errs, "retry_attempts"), "expected retry error, got %v", errs)
}

func TestValidate_StatsSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		ok       bool
	}{
		{"@daily", true},
		{"0 3 * * *", true},
		{"@every 6h", true},
		{"every day", false},
		{"61 * * * *", false},
	}
	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			cfg := &Config{Stats: StatsConfig{Schedule: tt.schedule}}
			errs := cfg.Validate()
			assert.Equal(t, !tt.ok, containsError(errs, "stats.schedule"), "errs: %v", errs)
		})
	}
}

func TestValidate_NegativeDurations(t *testing.T) {
	cfg := &Config{
		Views:  ViewsConfig{IdleTTL: -1},
		Events: EventsConfig{Retention: -1},
	}
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "views.idle_ttl"))
	assert.True(t, containsError(errs, "events.retention"))
}

// Helper functions to check for errors containing specific strings
func containsError(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func containsErrorBoth(errs []string, substr1, substr2 string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr1) && strings.Contains(e, substr2) {
			return true
		}
	}
	return false
}
