// Package server wires the license server together: registry, validator,
// lease table, sweeper, TCP listener and the optional operator surfaces.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/mls/internal/clock"
	"github.com/dmitrijs2005/mls/internal/common"
	"github.com/dmitrijs2005/mls/internal/cryptox"
	"github.com/dmitrijs2005/mls/internal/logging"
	"github.com/dmitrijs2005/mls/internal/server/config"
	"github.com/dmitrijs2005/mls/internal/server/console"
	"github.com/dmitrijs2005/mls/internal/server/leases"
	"github.com/dmitrijs2005/mls/internal/server/metrics"
	"github.com/dmitrijs2005/mls/internal/server/registry"
	"github.com/dmitrijs2005/mls/internal/server/tcp"
	"github.com/dmitrijs2005/mls/internal/server/validator"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/mls/internal/server/grpc"
)

// Process exit codes.
const (
	ExitOK              = 0
	ExitRegistryFailure = 1
	ExitStartupFailure  = 2
)

// ExitCode maps an error returned by NewApp or Run to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, common.ErrRegistryLoad):
		return ExitRegistryFailure
	default:
		return ExitStartupFailure
	}
}

type App struct {
	config    *config.Config
	logger    logging.Logger
	clock     clock.Clock
	registry  *registry.Registry
	validator *validator.Validator
	table     *leases.Table
	metrics   *metrics.Metrics
	stdin     io.Reader
	stdout    io.Writer
}

type Option func(*App)

// WithLogger replaces the logger built from the configuration.
func WithLogger(l logging.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithConsoleIO sets where the operator console reads and writes.
func WithConsoleIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.stdin = in
		a.stdout = out
	}
}

func WithClock(c clock.Clock) Option {
	return func(a *App) { a.clock = c }
}

// NewApp loads the registry and prepares every component. A registry
// failure wraps common.ErrRegistryLoad.
func NewApp(ctx context.Context, c *config.Config, opts ...Option) (*App, error) {
	app := &App{
		config: c,
		clock:  clock.Real{},
		table:  leases.NewTable(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}

	if app.logger == nil {
		l, err := logging.New(os.Stderr, c.LogFormat, c.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("logger init error: %w", err)
		}
		app.logger = l
	}

	keys, err := cryptox.NewDeriver(c.KeyScheme, c.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("key scheme init error: %w", err)
	}

	reg, err := registry.Load(ctx, c.RegistrySource, registry.S3Options{
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
	})
	if err != nil {
		app.logger.Error(ctx, "Failed to load license registry", "source", c.RegistrySource, "error", err.Error())
		return nil, err
	}
	app.logger.Info(ctx, "License registry loaded", "source", c.RegistrySource, "entries", reg.Len())

	app.registry = reg
	app.validator = validator.New(reg, keys)
	if c.MetricsAddr != "" {
		app.metrics = metrics.New()
	}

	return app, nil
}

// Run serves until ctx is cancelled, a termination signal arrives, or the
// operator quits. It returns the first component error, if any.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)

	srv := tcp.NewServer(app.config.EndpointAddr, app.validator, app.table, app.logger,
		tcp.WithClock(app.clock),
		tcp.WithMetrics(app.metrics),
		tcp.WithMaxRequestSize(app.config.MaxRequestSize),
		tcp.WithReadTimeout(app.config.ReadTimeout),
		tcp.WithRateLimit(app.config.ConnRateLimit),
	)
	g.Go(func() error { return srv.Run(ctx) })

	sweeper := leases.NewSweeper(app.table, app.clock, app.config.SweepInterval, app.logger)
	sweeper.OnSweep(app.metrics.ObserveSweep)
	g.Go(func() error { return sweeper.Run(ctx) })

	if app.config.AdminAddrGRPC != "" {
		admin, err := gs.NewGRPCServer(app.config.AdminAddrGRPC, app.logger, app.table, cancelFunc, app.config.SecretKey)
		if err != nil {
			cancelFunc()
			_ = g.Wait()
			return fmt.Errorf("admin API init error: %w", err)
		}
		g.Go(func() error { return admin.Run(ctx) })
	}

	if app.metrics != nil {
		ms := metrics.NewServer(app.config.MetricsAddr, app.metrics, app.logger)
		g.Go(func() error { return ms.Run(ctx) })
	}

	if app.config.Console {
		c := console.New(app.table, cancelFunc, app.stdin, app.stdout, app.logger)
		g.Go(func() error { return c.Run(ctx) })
	}

	err := g.Wait()
	app.logger.Info(context.Background(), "Exiting...")
	return err
}
