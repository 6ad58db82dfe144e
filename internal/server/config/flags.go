package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/mls/internal/flagx"
)

var serverFlags = []string{"-a", "-l", "-i", "-m", "-t", "-k", "-s", "-g", "-p", "-r", "-v", "-f", "-q"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string    license protocol bind address (e.g., "127.0.0.1:9999")
//	-l string    registry source
//	-i duration  sweep interval
//	-m int       max request size, bytes
//	-t duration  read timeout
//	-k string    key scheme (md5, blake2b)
//	-s string    secret key
//	-g string    admin gRPC address
//	-p string    metrics address
//	-r float     accepted connections per second
//	-v string    log level
//	-f string    log format (json, text)
//	-q           disable the operator console
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.RegistrySource, "l", config.RegistrySource, "registry source")
	fs.DurationVar(&config.SweepInterval, "i", config.SweepInterval, "sweep interval")
	fs.IntVar(&config.MaxRequestSize, "m", config.MaxRequestSize, "max request size in bytes")
	fs.DurationVar(&config.ReadTimeout, "t", config.ReadTimeout, "read timeout")
	fs.StringVar(&config.KeyScheme, "k", config.KeyScheme, "key scheme")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.AdminAddrGRPC, "g", config.AdminAddrGRPC, "admin gRPC address")
	fs.StringVar(&config.MetricsAddr, "p", config.MetricsAddr, "metrics address")
	fs.Float64Var(&config.ConnRateLimit, "r", config.ConnRateLimit, "connections per second")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format")
	quiet := fs.Bool("q", !config.Console, "disable operator console")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	config.Console = !*quiet
	return nil
}
