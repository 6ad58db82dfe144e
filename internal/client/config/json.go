package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/mls/internal/flagx"
	"github.com/dmitrijs2005/mls/internal/timex"
)

// JsonConfig is the JSON file layout; absent fields keep their values.
type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	UserName           string          `json:"licence_user_name"`
	LicenceKey         string          `json:"licence_key"`
	RetryInterval      *timex.Duration `json:"retry_interval"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
}

func parseJson(cfg *Config, args []string) error {
	jsonConfigFile := flagx.ConfigPath(args)
	if jsonConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", jsonConfigFile, err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.UserName != "" {
		cfg.UserName = jc.UserName
	}
	if jc.LicenceKey != "" {
		cfg.LicenceKey = jc.LicenceKey
	}
	if jc.RetryInterval != nil {
		cfg.RetryInterval = jc.RetryInterval.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
