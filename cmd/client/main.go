package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/mls/internal/client"
	"github.com/dmitrijs2005/mls/internal/client/config"
	"github.com/dmitrijs2005/mls/internal/clock"
	"github.com/dmitrijs2005/mls/internal/server/protocol"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	if cfg.LicenceKey == "" {
		key, err := client.PromptKey(os.Stdin, os.Stdout)
		if err != nil && !errors.Is(err, client.ErrNoTerminal) {
			fmt.Fprintf(os.Stderr, "read key: %v\n", err)
			return 2
		}
		cfg.LicenceKey = key
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.NewLicenseAPI(cfg.RequestTimeout)
	api.Start(cfg.ServerEndpointAddr)
	api.SetLicense(cfg.UserName, cfg.LicenceKey)
	defer api.Stop()

	if cfg.Once {
		resp, err := api.GetLicenseToken(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "request: %v\n", err)
			return 1
		}
		client.PrintResponse(os.Stdout, resp)
		if !resp.Licence {
			return 1
		}
		return 0
	}

	err = client.Renew(ctx, api, clock.Real{}, cfg.RetryInterval, func(resp protocol.Response, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "request: %v\n", err)
			return
		}
		client.PrintResponse(os.Stdout, resp)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	return 0
}
