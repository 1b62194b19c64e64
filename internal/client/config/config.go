package config

import "time"

// Config holds runtime settings for the portal CLI.
//
// Fields:
//   - APIBaseURL: base URL of the portal backend REST API.
//   - RequestTimeout: per-request timeout for backend calls.
//   - DatabasePath: path of the local sqlite database file.
//   - RecaptchaSiteKey: reCAPTCHA site key; empty disables CAPTCHA gating.
//   - GAMeasurementID, GAAPISecret: GA4 Measurement Protocol credentials;
//     empty disables analytics.
//   - LogLevel: slog level name (debug, info, warn, error).
type Config struct {
	APIBaseURL       string
	RequestTimeout   time.Duration
	DatabasePath     string
	RecaptchaSiteKey string
	GAMeasurementID  string
	GAAPISecret      string
	LogLevel         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5050/api"
	c.RequestTimeout = 30 * time.Second
	c.DatabasePath = "portal.db"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
