// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Loading and validation errors wrap this package's sentinel kinds.
package config

import (
	"github.com/okian/bioage/internal/domain/baa"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// MetricsEnabled toggles Prometheus collection.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// BAAIncludeSexTerm applies the sex indicator's coefficient delta in
	// BAA estimates. Off by default to match the published scoring code.
	BAAIncludeSexTerm bool `koanf:"baa_include_sex_term"`

	// BAACoefficients optionally replaces the published BAA table. When set
	// it must cover exactly the record features.
	BAACoefficients map[string]baa.Coefficient `koanf:"baa_coefficients"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		MetricsEnabled:    true,
		BAAIncludeSexTerm: false,
	}
}

// BAATable returns the configured coefficient override, or nil when the
// published table should be used.
func (c *Config) BAATable() baa.Table {
	if len(c.BAACoefficients) == 0 {
		return nil
	}
	return baa.Table(c.BAACoefficients).Clone()
}
