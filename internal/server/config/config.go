// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the GophAuth server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the public gRPC endpoint.
//   - EndpointAddrMetrics: bind address for the Prometheus /metrics endpoint; empty disables it.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty keeps profiles in memory.
//   - CredentialTTL: lifetime of an issued credential.
//   - KeyMaxAge / SweepInterval: signing keys older than KeyMaxAge are dropped
//     by a sweep that runs every SweepInterval.
//   - TOTPIssuer: issuer label written into provisioning URIs.
//   - TOTPWindow: accepted clock drift in 30 second steps on either side, at most 10.
//   - OTPCacheSize: capacity of the derived code cache.
//   - LogBackend / LogLevel: "slog" or "zap"; debug, info, warn or error.
//   - FederationKey: shared key a trusted identity gateway presents to call
//     LoginFederated; empty disables federated login over gRPC.
type Config struct {
	EndpointAddrGRPC    string
	EndpointAddrMetrics string
	DatabaseDSN         string
	CredentialTTL       time.Duration
	KeyMaxAge           time.Duration
	SweepInterval       time.Duration
	TOTPIssuer          string
	TOTPWindow          int
	OTPCacheSize        int
	LogBackend          string
	LogLevel            string
	FederationKey       string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrMetrics = ":9090"
	c.DatabaseDSN = ""
	c.CredentialTTL = 1 * time.Hour
	c.KeyMaxAge = 1 * time.Hour
	c.SweepInterval = 1 * time.Hour
	c.TOTPIssuer = "GophAuth"
	c.TOTPWindow = 3
	c.OTPCacheSize = 1000
	c.LogBackend = "slog"
	c.LogLevel = "info"
	c.FederationKey = ""
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
