package leases

import (
	"context"
	"time"

	"github.com/dmitrijs2005/mls/internal/clock"
	"github.com/dmitrijs2005/mls/internal/logging"
)

// DefaultSweepInterval is how often expired leases are evicted.
const DefaultSweepInterval = 100 * time.Millisecond

// SweepFunc is notified after every sweep.
type SweepFunc func(removed, remaining int)

// Sweeper periodically evicts expired leases from a Table.
type Sweeper struct {
	table    *Table
	clock    clock.Clock
	interval time.Duration
	logger   logging.Logger
	onSweep  SweepFunc
}

func NewSweeper(t *Table, c clock.Clock, interval time.Duration, l logging.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if c == nil {
		c = clock.Real{}
	}
	return &Sweeper{
		table:    t,
		clock:    c,
		interval: interval,
		logger:   l.With("module", "sweeper"),
	}
}

// OnSweep registers fn to run after each sweep. Must be called before Run.
func (s *Sweeper) OnSweep(fn SweepFunc) {
	s.onSweep = fn
}

// Run sweeps every interval until ctx is cancelled. The wait between sweeps
// is interrupted by cancellation.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info(ctx, "Starting expiry sweeper", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping expiry sweeper")
			return nil
		case <-s.clock.After(s.interval):
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed := s.table.SweepExpired(s.clock.Now())
	remaining := s.table.Len()

	if removed > 0 {
		s.logger.Debug(ctx, "Expired leases removed", "removed", removed, "remaining", remaining)
	}
	if s.onSweep != nil {
		s.onSweep(removed, remaining)
	}
}
