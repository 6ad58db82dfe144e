// Package config handles configuration for the license server, including
// defaults, JSON overlay, and command-line flags.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/dmitrijs2005/mls/internal/common"
	"github.com/dmitrijs2005/mls/internal/cryptox"
)

// Config holds runtime settings for the license server.
//
// Fields:
//   - EndpointAddr: bind address for the license protocol listener.
//   - RegistrySource: file path, postgres://, sqlite:// or s3:// location.
//   - SweepInterval: period of the expiry sweeper.
//   - MaxRequestSize: receive buffer ceiling for one request, in bytes.
//   - ReadTimeout: how long a connection may take to send its request.
//   - KeyScheme / SecretKey: key derivation; SecretKey also signs admin tokens.
//   - AdminAddrGRPC / MetricsAddr: optional listeners, empty disables them.
//   - ConnRateLimit: accepted connections per second, 0 is unlimited.
//   - S3*: object storage settings for s3:// registry sources.
type Config struct {
	EndpointAddr   string
	RegistrySource string
	SweepInterval  time.Duration
	MaxRequestSize int
	ReadTimeout    time.Duration
	KeyScheme      string
	SecretKey      string
	AdminAddrGRPC  string
	MetricsAddr    string
	ConnRateLimit  float64
	LogLevel       string
	LogFormat      string
	Console        bool
	S3Region       string
	S3BaseEndpoint string
	S3RootUser     string
	S3RootPassword string
}

// LoadDefaults populates Config with the stock settings.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = "127.0.0.1:9999"
	c.RegistrySource = "licenses.json"
	c.SweepInterval = 100 * time.Millisecond
	c.MaxRequestSize = common.DefaultMaxRequestSize
	c.ReadTimeout = 5 * time.Second
	c.KeyScheme = cryptox.SchemeMD5
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.Console = true
	c.S3Region = "us-east-1"
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.EndpointAddr == "" {
		errs = append(errs, errors.New("endpoint address is empty"))
	}
	if c.RegistrySource == "" {
		errs = append(errs, errors.New("registry source is empty"))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, errors.New("sweep interval must be positive"))
	}
	if c.MaxRequestSize <= 0 {
		errs = append(errs, errors.New("max request size must be positive"))
	}
	if c.ReadTimeout < 0 {
		errs = append(errs, errors.New("read timeout must not be negative"))
	}
	if c.ConnRateLimit < 0 {
		errs = append(errs, errors.New("connection rate limit must not be negative"))
	}
	if c.AdminAddrGRPC != "" && c.SecretKey == "" {
		errs = append(errs, errors.New("admin API needs a secret key"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
