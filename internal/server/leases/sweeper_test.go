package leases

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/mls/internal/clock"
	"github.com/dmitrijs2005/mls/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweepResult struct {
	removed, remaining int
}

func startSweeper(t *testing.T, tbl *Table, clk clock.Clock, interval time.Duration) (chan sweepResult, context.CancelFunc, chan error) {
	t.Helper()
	s := NewSweeper(tbl, clk, interval, logging.Nop())
	results := make(chan sweepResult, 16)
	s.OnSweep(func(removed, remaining int) { results <- sweepResult{removed, remaining} })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	return results, cancel, done
}

func TestSweeper_EvictsOnTick(t *testing.T) {
	clk := clock.NewManual(t0)
	tbl := NewTable()
	_, _ = tbl.TryGrant("alice", 5*time.Second, t0)
	_, _ = tbl.TryGrant("bob", time.Minute, t0)

	results, cancel, done := startSweeper(t, tbl, clk, 100*time.Millisecond)
	defer cancel()

	require.Eventually(t, func() bool { return clk.Pending() == 1 }, time.Second, time.Millisecond)
	clk.Advance(6 * time.Second)

	select {
	case r := <-results:
		assert.Equal(t, sweepResult{removed: 1, remaining: 1}, r)
	case <-time.After(time.Second):
		t.Fatal("sweep did not run")
	}

	_, ok := tbl.Lookup("alice")
	assert.False(t, ok)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestSweeper_StopsPromptlyOnCancel(t *testing.T) {
	_, cancel, done := startSweeper(t, NewTable(), clock.Real{}, time.Hour)

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper wait was not interrupted by cancellation")
	}
}

func TestSweeper_RealClockRemovesExpired(t *testing.T) {
	tbl := NewTable()
	_, _ = tbl.TryGrant("bob", 0, time.Now().UTC().Add(-time.Millisecond))

	_, cancel, _ := startSweeper(t, tbl, clock.Real{}, 5*time.Millisecond)
	defer cancel()

	require.Eventually(t, func() bool { return tbl.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestNewSweeper_Defaults(t *testing.T) {
	s := NewSweeper(NewTable(), nil, 0, logging.Nop())
	assert.Equal(t, DefaultSweepInterval, s.interval)
	assert.Equal(t, clock.Real{}, s.clock)
}
