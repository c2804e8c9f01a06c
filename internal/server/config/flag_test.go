package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-m", ":9191", "-d", "postgres://db", "-t", "15m", "-k", "2h", "-w", "10m",
			"-i", "Acme", "-o", "1", "-n", "50", "-l", "zap", "-v", "debug", "-f", "gw-key",
		}, expected: &Config{
			EndpointAddrGRPC:    "127.0.0.1:9090",
			EndpointAddrMetrics: ":9191",
			DatabaseDSN:         "postgres://db",
			CredentialTTL:       15 * time.Minute,
			KeyMaxAge:           2 * time.Hour,
			SweepInterval:       10 * time.Minute,
			TOTPIssuer:          "Acme",
			TOTPWindow:          1,
			OTPCacheSize:        50,
			LogBackend:          "zap",
			LogLevel:            "debug",
			FederationKey:       "gw-key",
		}},
		{name: "unknown flags are ignored", args: []string{"cmd", "-config", "x.json", "-z", "1", "-a", ":1"},
			expected: &Config{EndpointAddrGRPC: ":1"}},
		{name: "bad duration panics", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
		{name: "bad int panics", args: []string{"cmd", "-o", "three"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
