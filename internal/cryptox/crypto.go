// Package cryptox implements the license key schemes. A key is derived from
// the license user name alone (optionally keyed with a server secret); it is
// an identifier check, not an authentication mechanism.
package cryptox

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Scheme names accepted by NewDeriver.
const (
	SchemeMD5     = "md5"
	SchemeBlake2b = "blake2b"
)

// KeyDeriver computes the expected license key for a user.
type KeyDeriver interface {
	DeriveKey(userID string) string
}

// MD5Deriver is the legacy scheme: hex MD5 of the user name. Existing
// registries and clients were generated with it.
type MD5Deriver struct{}

func (MD5Deriver) DeriveKey(userID string) string {
	sum := md5.Sum([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// Blake2bDeriver is hex BLAKE2b-256 of the user name, keyed with Secret when
// one is set.
type Blake2bDeriver struct {
	Secret []byte
}

func (d Blake2bDeriver) DeriveKey(userID string) string {
	// New256 only fails for keys over 64 bytes; NewDeriver rejects those.
	h, err := blake2b.New256(d.Secret)
	if err != nil {
		panic(err)
	}
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil))
}

// NewDeriver returns the KeyDeriver registered under scheme. An empty
// scheme selects md5.
func NewDeriver(scheme, secret string) (KeyDeriver, error) {
	switch strings.ToLower(scheme) {
	case "", SchemeMD5:
		return MD5Deriver{}, nil
	case SchemeBlake2b:
		if len(secret) > blake2b.Size {
			return nil, fmt.Errorf("blake2b secret longer than %d bytes", blake2b.Size)
		}
		return Blake2bDeriver{Secret: []byte(secret)}, nil
	}
	return nil, fmt.Errorf("unknown key scheme %q", scheme)
}

// KeysEqual compares two keys in constant time.
func KeysEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
