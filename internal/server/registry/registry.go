// Package registry holds the static license registry: the users that may
// hold a license, their keys and their lease durations. A Registry is built
// once at startup and never mutated, so lookups need no locking.
package registry

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dmitrijs2005/mls/internal/common"
)

// Entry is one licensed user. A zero LeaseDuration marks an unlimited
// license that is granted regardless of the supplied key. An empty Key means
// the expected key is derived from the user name.
type Entry struct {
	UserID        string
	Key           string
	LeaseDuration time.Duration
}

// maxValidationSeconds is the longest validation time a time.Duration holds.
const maxValidationSeconds = math.MaxInt64 / int64(time.Second)

// DurationFromSeconds converts a validation time in whole seconds, rejecting
// values that are negative or do not fit a time.Duration.
func DurationFromSeconds(seconds int64) (time.Duration, error) {
	if seconds < 0 {
		return 0, fmt.Errorf("negative validation time %d", seconds)
	}
	if seconds > maxValidationSeconds {
		return 0, fmt.Errorf("validation time %d exceeds maximum of %d seconds", seconds, maxValidationSeconds)
	}
	return time.Duration(seconds) * time.Second, nil
}

type Registry struct {
	entries map[string]Entry
}

// New builds a Registry from entries. User ids must be non-empty and unique
// and durations non-negative.
func New(entries []Entry) (*Registry, error) {
	m := make(map[string]Entry, len(entries))
	for i, e := range entries {
		if e.UserID == "" {
			return nil, fmt.Errorf("entry %d: empty user name", i)
		}
		if e.LeaseDuration < 0 {
			return nil, fmt.Errorf("entry %d (%s): negative validation time", i, e.UserID)
		}
		if _, dup := m[e.UserID]; dup {
			return nil, fmt.Errorf("entry %d: duplicate user name %q", i, e.UserID)
		}
		m[e.UserID] = e
	}
	return &Registry{entries: m}, nil
}

// Lookup returns the entry for userID or common.ErrorNotFound.
func (r *Registry) Lookup(userID string) (Entry, error) {
	e, ok := r.entries[userID]
	if !ok {
		return Entry{}, common.ErrorNotFound
	}
	return e, nil
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns a copy of all entries ordered by user id.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}
