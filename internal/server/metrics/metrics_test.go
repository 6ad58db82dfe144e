package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/mls/internal/logging"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveRequest(OutcomeGranted)
	m.ObserveRequest(OutcomeGranted)
	m.ObserveRequest(OutcomeAlreadyActive)
	m.SetActive(2)
	m.ObserveSweep(1, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(OutcomeGranted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(OutcomeAlreadyActive)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.expired))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeLeases))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest(OutcomeDenied)
	m.SetActive(3)
	m.ObserveSweep(1, 2)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveRequest(OutcomeDenied)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mls_requests_total{outcome="denied"} 1`)
	assert.Contains(t, rec.Body.String(), "mls_active_leases 0")
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestServer_ServesAndStops(t *testing.T) {
	addr := freeAddr(t)
	m := New()
	m.SetActive(4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- NewServer(addr, m, logging.Nop()).Run(ctx) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, body, "mls_active_leases 4")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("metrics server did not stop")
	}
}

func TestServer_BadAddress(t *testing.T) {
	err := NewServer("127.0.0.1:99999", New(), logging.Nop()).Run(context.Background())
	assert.Error(t, err)
}
