package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/mls/internal/flagx"
)

func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-u", "-k", "-o", "-i", "-t"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.UserName, "u", cfg.UserName, "licence user name")
	fs.StringVar(&cfg.LicenceKey, "k", cfg.LicenceKey, "licence key")
	fs.BoolVar(&cfg.Once, "o", cfg.Once, "request once and exit")
	fs.DurationVar(&cfg.RetryInterval, "i", cfg.RetryInterval, "retry interval after a denial")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
