// Package config defines the application-level configuration object: the
// store DSN, logging setup, and HTTP engine settings. It is adapted from
// the teacher's root-level Config/LoadConfig (config.go, config_load.go):
// same extension-sniffed YAML/JSON loader, same validate-after-load shape,
// generalised from LLM-gateway routing config to the settings this core
// actually owns (spec.md §6 draws the line: the collection file itself is
// an external collaborator's format, never loaded through this package).
package config

import (
	"fmt"
	"time"
)

// Config holds process-wide settings for an application embedding this
// core: where the exchange database lives, how verbosely to log, and the
// bounds the render/HTTP pipeline should respect.
type Config struct {
	// Store configures the durable exchange database.
	Store StoreConfig `json:"store" yaml:"store"`
	// Logging configures the structured logger.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	// HTTP configures the HTTP engine's send stage.
	HTTP HTTPConfig `json:"http" yaml:"http"`
}

// StoreConfig configures the SQLite-backed exchange database (spec.md §4.3).
type StoreConfig struct {
	// DSN is the SQLite file path or DSN. Empty defaults to
	// "slumberlib-exchanges.db" in the current directory.
	DSN string `json:"dsn" yaml:"dsn"`
}

// LoggingConfig configures internal/logging (spec.md's ambient stack).
type LoggingConfig struct {
	// Level is one of debug/info/warn/error. Empty defaults to info.
	Level string `json:"level" yaml:"level"`
	// Format is "json" (default) or "text".
	Format string `json:"format" yaml:"format"`
}

// HTTPConfig configures the HTTP engine's send stage (spec.md §4.2).
type HTTPConfig struct {
	// InsecureHosts lists hosts whose TLS certificates are not verified
	// (test-mode use per spec.md §4.2).
	InsecureHosts []string `json:"insecure_hosts,omitempty" yaml:"insecure_hosts,omitempty"`
	// RequestTimeout is a per-call HTTP timeout, in nanoseconds (time.Duration
	// has no built-in JSON/YAML string form). It is only loaded and checked
	// for being non-negative here: httpengine.New takes no timeout, so no
	// HTTP call is bounded by this value.
	RequestTimeout time.Duration `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty"`
}

// Validate checks Config for internal consistency.
func Validate(cfg Config) error {
	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown logging level %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("config: unknown logging format %q", cfg.Logging.Format)
	}
	if cfg.HTTP.RequestTimeout < 0 {
		return fmt.Errorf("config: http.request_timeout must not be negative")
	}
	return nil
}
