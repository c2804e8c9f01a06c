package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk form of Config. Pointer fields distinguish
// "absent" from a zero value, so a file only overrides what it mentions.
// Durations accept "1h" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC    *string         `json:"endpoint_addr_grpc"`
	EndpointAddrMetrics *string         `json:"endpoint_addr_metrics"`
	DatabaseDSN         *string         `json:"database_dsn"`
	CredentialTTL       *timex.Duration `json:"credential_ttl"`
	KeyMaxAge           *timex.Duration `json:"key_max_age"`
	SweepInterval       *timex.Duration `json:"sweep_interval"`
	TOTPIssuer          *string         `json:"totp_issuer"`
	TOTPWindow          *int            `json:"totp_window"`
	OTPCacheSize        *int            `json:"otp_cache_size"`
	LogBackend          *string         `json:"log_backend"`
	LogLevel            *string         `json:"log_level"`
	FederationKey       *string         `json:"federation_key"`
}

// parseJson overlays values from the JSON file named by -c or -config.
// Without either flag nothing is loaded. An unreadable or invalid file
// panics, as there is no sensible way to continue.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setIf(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setIf(&config.EndpointAddrMetrics, c.EndpointAddrMetrics)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.TOTPIssuer, c.TOTPIssuer)
	setIf(&config.TOTPWindow, c.TOTPWindow)
	setIf(&config.OTPCacheSize, c.OTPCacheSize)
	setIf(&config.LogBackend, c.LogBackend)
	setIf(&config.LogLevel, c.LogLevel)
	setIf(&config.FederationKey, c.FederationKey)

	if c.CredentialTTL != nil {
		config.CredentialTTL = c.CredentialTTL.Duration
	}
	if c.KeyMaxAge != nil {
		config.KeyMaxAge = c.KeyMaxAge.Duration
	}
	if c.SweepInterval != nil {
		config.SweepInterval = c.SweepInterval.Duration
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
