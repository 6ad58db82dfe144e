package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/mls/internal/flagx"
	"github.com/dmitrijs2005/mls/internal/timex"
)

// JsonConfig is the JSON file layout. Durations accept strings such as
// "100ms" or integer nanoseconds. Absent fields keep their current values.
type JsonConfig struct {
	EndpointAddr   string          `json:"endpoint_addr"`
	RegistrySource string          `json:"registry_source"`
	SweepInterval  *timex.Duration `json:"sweep_interval"`
	MaxRequestSize int             `json:"max_request_size"`
	ReadTimeout    *timex.Duration `json:"read_timeout"`
	KeyScheme      string          `json:"key_scheme"`
	SecretKey      string          `json:"secret_key"`
	AdminAddrGRPC  string          `json:"admin_addr_grpc"`
	MetricsAddr    string          `json:"metrics_addr"`
	ConnRateLimit  *float64        `json:"conn_rate_limit"`
	LogLevel       string          `json:"log_level"`
	LogFormat      string          `json:"log_format"`
	Console        *bool           `json:"console"`
	S3Region       string          `json:"s3_region"`
	S3BaseEndpoint string          `json:"s3_base_endpoint"`
	S3RootUser     string          `json:"s3_root_user"`
	S3RootPassword string          `json:"s3_root_password"`
}

// parseJson overlays the JSON file named by -c/-config onto config. Without
// such a flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	jsonConfigFile := flagx.ConfigPath(args)
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", jsonConfigFile, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.RegistrySource, c.RegistrySource)
	if c.SweepInterval != nil {
		config.SweepInterval = c.SweepInterval.Duration
	}
	if c.MaxRequestSize != 0 {
		config.MaxRequestSize = c.MaxRequestSize
	}
	if c.ReadTimeout != nil {
		config.ReadTimeout = c.ReadTimeout.Duration
	}
	setString(&config.KeyScheme, c.KeyScheme)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AdminAddrGRPC, c.AdminAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	if c.ConnRateLimit != nil {
		config.ConnRateLimit = *c.ConnRateLimit
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	if c.Console != nil {
		config.Console = *c.Console
	}
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
