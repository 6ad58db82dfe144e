// Package clock abstracts the time source so lease expiry can be driven
// deterministically in tests.
package clock

import "time"

// Clock is the subset of the time package used by the lease table and the
// expiry sweeper.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// Real implements Clock using the standard library.
type Real struct{}

// Now returns the current UTC time.
func (Real) Now() time.Time {
	return time.Now().UTC()
}

// After mirrors time.After.
func (Real) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
