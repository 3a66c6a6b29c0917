package config

import "time"

// Config holds runtime settings for the BioGuard CLI.
//
// Fields:
//   - ServerURL: base URL of the REST API.
//   - TokenDir: directory (relative to the working directory) holding the
//     saved session.
//   - RequestTimeout: per-request HTTP timeout.
type Config struct {
	ServerURL      string
	TokenDir       string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.TokenDir = ".bioguard"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
