package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validLogFormats = map[string]bool{
	"text": true, "json": true, "pretty": true, "": true,
}

var validBackends = map[string]bool{
	BackendMemory: true, BackendBolt: true, BackendSQLite: true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Server validation
	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}
	if !validLogFormats[c.Server.LogFormat] {
		errs = append(errs, fmt.Sprintf("server.log_format: must be one of text, json, pretty; got %q", c.Server.LogFormat))
	}

	// Store validation
	if !validBackends[c.Store.Backend] {
		errs = append(errs, fmt.Sprintf("store.backend: must be one of memory, bolt, sqlite; got %q", c.Store.Backend))
	}
	if (c.Store.Backend == BackendBolt || c.Store.Backend == BackendSQLite) && c.Store.Path == "" {
		errs = append(errs, fmt.Sprintf("store.path: required for backend %q", c.Store.Backend))
	}

	// Listing validation
	if c.Listing.MaxPageSize < 0 || c.Listing.DefaultPageSize < 0 {
		errs = append(errs, "listing: page sizes must be positive")
	}
	if c.Listing.MaxPageSize > 0 && c.Listing.DefaultPageSize > c.Listing.MaxPageSize {
		errs = append(errs, fmt.Sprintf("listing.default_page_size: %d exceeds max_page_size %d",
			c.Listing.DefaultPageSize, c.Listing.MaxPageSize))
	}
	if c.Listing.RetryAttempts < 0 {
		errs = append(errs, "listing.retry_attempts: must not be negative")
	}

	if c.Views.IdleTTL < 0 {
		errs = append(errs, "views.idle_ttl: must not be negative")
	}
	if c.Views.MaxViews < 0 {
		errs = append(errs, "views.max_views: must not be negative")
	}

	if c.Source.RatePerSecond < 0 {
		errs = append(errs, "source.rate_per_second: must not be negative")
	}

	// Stats schedule must parse as a cron spec
	if c.Stats.Schedule != "" {
		if _, err := cron.ParseStandard(c.Stats.Schedule); err != nil {
			errs = append(errs, fmt.Sprintf("stats.schedule: %v", err))
		}
	}

	if c.Events.Retention < 0 {
		errs = append(errs, "events.retention: must not be negative")
	}

	return errs
}
