// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the Authgate server.
//
// Fields:
//   - Addr: bind address for the HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty means in-memory stores.
//   - SecretKey: HMAC secret for signing access tokens (HS256).
//   - AccessTokenValidity / RefreshTokenValidity: token lifetimes. The
//     refresh lifetime is deliberately short so rotation is observable in
//     development; production deployments should override it to days.
//   - SeedTestUser: when true, the user store is seeded with the development
//     account test@local / 1234.
//   - CORSOrigins: origins allowed by the CORS middleware.
type Config struct {
	Addr                 string
	DatabaseDSN          string
	SecretKey            string
	AccessTokenValidity  time.Duration
	RefreshTokenValidity time.Duration
	SeedTestUser         bool
	CORSOrigins          []string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidity = 10 * time.Minute
	c.RefreshTokenValidity = 20 * time.Minute
	c.SeedTestUser = true
	c.CORSOrigins = []string{"https://*", "http://*"}
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
