package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-m string     metrics bind address (empty disables)
//	-d string     PostgreSQL DSN (empty keeps profiles in memory)
//	-t duration   credential lifetime
//	-k duration   maximum signing key age
//	-w duration   key sweep interval
//	-i string     TOTP issuer label
//	-o int        TOTP window in steps
//	-n int        OTP cache size
//	-l string     log backend (slog|zap)
//	-v string     log level
//	-f string     federation gateway key
//
// Arguments not listed above are filtered out first with flagx.FilterArgs,
// so -c/-config and anything else on the command line are ignored here.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-d", "-t", "-k", "-w", "-i", "-o", "-n", "-l", "-v", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.EndpointAddrMetrics, "m", config.EndpointAddrMetrics, "address and port to serve metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.DurationVar(&config.CredentialTTL, "t", config.CredentialTTL, "credential lifetime")
	fs.DurationVar(&config.KeyMaxAge, "k", config.KeyMaxAge, "maximum age of a signing key")
	fs.DurationVar(&config.SweepInterval, "w", config.SweepInterval, "key sweep interval")
	fs.StringVar(&config.TOTPIssuer, "i", config.TOTPIssuer, "TOTP issuer")
	fs.IntVar(&config.TOTPWindow, "o", config.TOTPWindow, "TOTP window (steps)")
	fs.IntVar(&config.OTPCacheSize, "n", config.OTPCacheSize, "OTP cache size")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog|zap)")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	fs.StringVar(&config.FederationKey, "f", config.FederationKey, "federation gateway key")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
