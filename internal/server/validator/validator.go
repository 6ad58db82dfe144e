// Package validator decides whether a license request is granted. It only
// reads the immutable registry, so a Validator is safe for concurrent use.
package validator

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/mls/internal/cryptox"
	"github.com/dmitrijs2005/mls/internal/server/registry"
)

// Decision is the outcome of a validation. LeaseDuration is meaningful only
// when Granted; Reason only when not.
type Decision struct {
	Granted       bool
	LeaseDuration time.Duration
	Reason        string
}

// Lookuper is the registry view the Validator needs.
type Lookuper interface {
	Lookup(userID string) (registry.Entry, error)
}

type Validator struct {
	registry Lookuper
	keys     cryptox.KeyDeriver
}

func New(r Lookuper, keys cryptox.KeyDeriver) *Validator {
	if keys == nil {
		keys = cryptox.MD5Deriver{}
	}
	return &Validator{registry: r, keys: keys}
}

// Validate checks suppliedKey for userID. Entries with a zero lease duration
// are granted without a key check.
func (v *Validator) Validate(userID, suppliedKey string) Decision {
	entry, err := v.registry.Lookup(userID)
	if err != nil {
		return Decision{Reason: fmt.Sprintf("License user name '%s' not found.", userID)}
	}

	if entry.LeaseDuration == 0 {
		return Decision{Granted: true}
	}

	expected := entry.Key
	if expected == "" {
		expected = v.keys.DeriveKey(userID)
	}

	if !cryptox.KeysEqual(suppliedKey, expected) {
		return Decision{Reason: fmt.Sprintf("No license available for user '%s'.", userID)}
	}

	return Decision{Granted: true, LeaseDuration: entry.LeaseDuration}
}
