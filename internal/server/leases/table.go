// Package leases keeps the active-license table and the background sweeper
// that evicts expired leases from it.
package leases

import (
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/mls/internal/common"
)

// Lease is an active license for one user.
type Lease struct {
	UserID    string
	ExpiresAt time.Time
}

// Table maps user ids to lease expiry instants. All operations take a single
// mutex; nothing blocks while holding it. Entries are only ever inserted or
// removed, never updated in place.
type Table struct {
	mu     sync.Mutex
	leases map[string]time.Time
}

func NewTable() *Table {
	return &Table{leases: make(map[string]time.Time)}
}

// TryGrant inserts a lease expiring at now+d and returns that instant. If the
// user already holds a lease the table is left untouched and
// common.ErrAlreadyActive is returned.
func (t *Table) TryGrant(userID string, d time.Duration, now time.Time) (time.Time, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.leases[userID]; ok {
		return time.Time{}, common.ErrAlreadyActive
	}

	expiresAt := now.Add(d)
	t.leases[userID] = expiresAt
	return expiresAt, nil
}

// Lookup returns the lease held by userID, if any.
func (t *Table) Lookup(userID string) (Lease, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	exp, ok := t.leases[userID]
	return Lease{UserID: userID, ExpiresAt: exp}, ok
}

// Snapshot returns the current leases ordered by user id.
func (t *Table) Snapshot() []Lease {
	t.mu.Lock()
	out := make([]Lease, 0, len(t.leases))
	for user, exp := range t.leases {
		out = append(out, Lease{UserID: user, ExpiresAt: exp})
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// SweepExpired removes every lease that expired strictly before now and
// returns how many were removed.
func (t *Table) SweepExpired(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for user, exp := range t.leases {
		if exp.Before(now) {
			delete(t.leases, user)
			removed++
		}
	}
	return removed
}

func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.leases)
}
