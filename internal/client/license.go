// Package client is the license client library: it asks a license server for
// a lease and keeps renewing it.
package client

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/mls/internal/common"
	"github.com/dmitrijs2005/mls/internal/netx"
	"github.com/dmitrijs2005/mls/internal/server/protocol"
)

var (
	ErrNotStarted = errors.New("license API not started")
	ErrNoResponse = errors.New("server closed the connection without a response")
)

// maxResponseSize caps how much of a reply is read.
const maxResponseSize = 4096

// LicenseAPI holds the server address and the licence credentials used for
// each request. It is safe for concurrent use.
type LicenseAPI struct {
	mu         sync.Mutex
	serverAddr string
	userName   string
	licenceKey string
	timeout    time.Duration
}

func NewLicenseAPI(timeout time.Duration) *LicenseAPI {
	return &LicenseAPI{timeout: timeout}
}

// Start sets the server address.
func (a *LicenseAPI) Start(serverAddr string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.serverAddr = serverAddr
}

// SetLicense sets the credentials presented on each request.
func (a *LicenseAPI) SetLicense(userName, licenceKey string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.userName = userName
	a.licenceKey = licenceKey
}

// Stop clears the credentials.
func (a *LicenseAPI) Stop() {
	a.SetLicense("", "")
}

// GetLicenseToken sends one request. When the server cannot be reached the
// result is a denial with common.ConnectFailedDescription and a nil error.
func (a *LicenseAPI) GetLicenseToken(ctx context.Context) (protocol.Response, error) {
	a.mu.Lock()
	addr, user, key := a.serverAddr, a.userName, a.licenceKey
	a.mu.Unlock()

	if addr == "" {
		return protocol.Response{}, ErrNotStarted
	}

	req, err := protocol.EncodeRequest(protocol.NewRequest(user, key))
	if err != nil {
		return protocol.Response{}, err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	data, err := netx.RoundTrip(ctx, addr, req, maxResponseSize)
	if err != nil {
		if isDialError(err) {
			return protocol.Denied(user, common.ConnectFailedDescription), nil
		}
		return protocol.Response{}, err
	}
	if len(data) == 0 {
		return protocol.Response{}, ErrNoResponse
	}

	return protocol.DecodeResponse(data)
}

func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
