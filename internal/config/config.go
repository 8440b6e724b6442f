// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load(ctx) layers defaults, optional file, and env vars.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// HippodataBaseURL points at the scoring provider.
	HippodataBaseURL string `koanf:"hippodata_base_url"`

	// HippodataBearer is the bearer token for the scoring provider.
	HippodataBearer string `koanf:"hippodata_bearer"`

	// SourceTimeoutSeconds bounds each Hippodata call.
	SourceTimeoutSeconds int `koanf:"source_timeout_seconds"`

	// TargetTimeoutSeconds bounds each Equipe call.
	TargetTimeoutSeconds int `koanf:"target_timeout_seconds"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9090",
		HippodataBaseURL:     "https://api.hippo-server.net",
		HippodataBearer:      "",
		SourceTimeoutSeconds: 15,
		TargetTimeoutSeconds: 10,
	}
}
