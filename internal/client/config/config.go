// Package config loads runtime configuration for the license client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string    address:port of the license server
//	-u string    licence user name
//	-k string    licence key (prompted for when omitted on a terminal)
//	-o           request once and exit instead of renewing
//	-i duration  wait before retrying after a denial
//	-t duration  timeout for one request
//
// JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:9999",
//	  "licence_user_name": "alice",
//	  "licence_key": "6384e2b2184bcbf58eccf10ca7a6563c",
//	  "retry_interval": "5s",
//	  "request_timeout": "5s"
//	}
package config

import (
	"errors"
	"os"
	"time"
)

// Config holds runtime settings for the license client.
type Config struct {
	ServerEndpointAddr string
	UserName           string
	LicenceKey         string
	Once               bool
	RetryInterval      time.Duration
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with the stock settings.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:9999"
	c.RetryInterval = 5 * time.Second
	c.RequestTimeout = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present).
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
	if cfg.UserName == "" {
		return nil, errors.New("licence user name is required (-u)")
	}
	return cfg, nil
}
