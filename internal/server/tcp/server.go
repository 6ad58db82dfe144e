// Package tcp serves the license protocol over plain TCP: one JSON request
// and one JSON response per connection.
package tcp

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/mls/internal/clock"
	"github.com/dmitrijs2005/mls/internal/common"
	"github.com/dmitrijs2005/mls/internal/logging"
	"github.com/dmitrijs2005/mls/internal/server/leases"
	"github.com/dmitrijs2005/mls/internal/server/metrics"
	"github.com/dmitrijs2005/mls/internal/server/validator"
	"golang.org/x/time/rate"
)

// DefaultReadTimeout bounds how long a connection may take to send its request.
const DefaultReadTimeout = 5 * time.Second

// Validator decides whether a request is granted.
type Validator interface {
	Validate(userID, key string) validator.Decision
}

type Server struct {
	address        string
	validator      Validator
	table          *leases.Table
	logger         logging.Logger
	clock          clock.Clock
	metrics        *metrics.Metrics
	maxRequestSize int
	readTimeout    time.Duration
	limiter        *rate.Limiter

	handlers sync.WaitGroup
}

type Option func(*Server)

func WithClock(c clock.Clock) Option {
	return func(s *Server) { s.clock = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithMaxRequestSize sets the receive buffer ceiling in bytes.
func WithMaxRequestSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxRequestSize = n
		}
	}
}

func WithReadTimeout(d time.Duration) Option {
	return func(s *Server) { s.readTimeout = d }
}

// WithRateLimit caps accepted connections per second; 0 disables the cap.
func WithRateLimit(perSecond float64) Option {
	return func(s *Server) {
		if perSecond > 0 {
			burst := int(perSecond)
			if burst < 1 {
				burst = 1
			}
			s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

func NewServer(address string, v Validator, t *leases.Table, l logging.Logger, opts ...Option) *Server {
	s := &Server{
		address:        address,
		validator:      v,
		table:          t,
		logger:         l.With("module", "tcp_server"),
		clock:          clock.Real{},
		maxRequestSize: common.DefaultMaxRequestSize,
		readTimeout:    DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections from ln until ctx is cancelled, then closes ln
// and waits for in-flight connections to finish their exchange.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping license server...")
		case <-stop:
		}
		_ = ln.Close()
	}()

	s.logger.Info(ctx, "Starting license server", "address", ln.Addr().String())

	defer s.handlers.Wait()

	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn(ctx, "Accept failed", "error", err.Error())
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(10 * time.Millisecond):
			}
			continue
		}

		s.handlers.Add(1)
		go func() {
			defer s.handlers.Done()
			s.handleConn(ctx, conn)
		}()
	}
}
