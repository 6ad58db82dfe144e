package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/mls/internal/server"
	"github.com/dmitrijs2005/mls/internal/server/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return server.ExitStartupFailure
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return server.ExitCode(err)
	}

	fmt.Printf("MLS server listening on %s\n", cfg.EndpointAddr)

	return server.ExitCode(app.Run(ctx))
}
