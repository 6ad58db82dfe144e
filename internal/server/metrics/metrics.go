// Package metrics exposes license server counters in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mls/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes.
const (
	OutcomeGranted       = "granted"
	OutcomeDenied        = "denied"
	OutcomeAlreadyActive = "already_active"
	OutcomeMalformed     = "malformed"
	OutcomeTransport     = "transport_error"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	registry     *prometheus.Registry
	requests     *prometheus.CounterVec
	activeLeases prometheus.Gauge
	expired      prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mls",
			Name:      "requests_total",
			Help:      "License requests by outcome.",
		}, []string{"outcome"}),
		activeLeases: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mls",
			Name:      "active_leases",
			Help:      "Leases currently held in the active table.",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mls",
			Name:      "leases_expired_total",
			Help:      "Leases removed by the expiry sweeper.",
		}),
	}
	m.registry.MustRegister(m.requests, m.activeLeases, m.expired)
	return m
}

// ObserveRequest counts one finished request.
func (m *Metrics) ObserveRequest(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

// SetActive records the current table size.
func (m *Metrics) SetActive(n int) {
	if m == nil {
		return
	}
	m.activeLeases.Set(float64(n))
}

// ObserveSweep matches leases.SweepFunc.
func (m *Metrics) ObserveSweep(removed, remaining int) {
	if m == nil {
		return
	}
	m.expired.Add(float64(removed))
	m.activeLeases.Set(float64(remaining))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server serves /metrics on an address until its context is cancelled.
type Server struct {
	address string
	metrics *Metrics
	logger  logging.Logger
}

func NewServer(address string, m *Metrics, l logging.Logger) *Server {
	return &Server{address: address, metrics: m, logger: l.With("module", "metrics_server")}
}

func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping metrics server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting metrics server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
