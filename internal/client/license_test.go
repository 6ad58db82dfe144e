package client

import (
	"context"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mls/internal/common"
	"github.com/dmitrijs2005/mls/internal/server/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer answers each connection with the next scripted response and
// records the requests it saw. A nil response closes the connection silently.
type fakeServer struct {
	ln        net.Listener
	mu        sync.Mutex
	responses []*protocol.Response
	requests  []protocol.Request
}

func newFakeServer(t *testing.T, responses ...*protocol.Response) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeServer{ln: ln, responses: responses}
	go s.serve()
	t.Cleanup(func() { _ = ln.Close() })
	return s
}

func (s *fakeServer) addr() string { return s.ln.Addr().String() }

func (s *fakeServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.handle(conn)
	}
}

func (s *fakeServer) handle(conn net.Conn) {
	defer conn.Close()

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		return
	}
	req, err := protocol.DecodeRequest(buf[:n])

	s.mu.Lock()
	if err == nil {
		s.requests = append(s.requests, req)
	}
	var resp *protocol.Response
	if len(s.responses) > 0 {
		resp = s.responses[0]
		if len(s.responses) > 1 {
			s.responses = s.responses[1:]
		}
	}
	s.mu.Unlock()

	if resp == nil {
		return
	}
	b, _ := protocol.EncodeResponse(*resp)
	_, _ = conn.Write(b)
}

func (s *fakeServer) seen() []protocol.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.Request(nil), s.requests...)
}

func deadAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestGetLicenseToken_NotStarted(t *testing.T) {
	api := NewLicenseAPI(time.Second)
	_, err := api.GetLicenseToken(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestGetLicenseToken_Granted(t *testing.T) {
	exp := time.Date(2026, 10, 17, 12, 0, 5, 0, time.UTC)
	granted := protocol.Granted("alice", exp)
	srv := newFakeServer(t, &granted)

	api := NewLicenseAPI(time.Second)
	api.Start(srv.addr())
	api.SetLicense("alice", "k1")

	resp, err := api.GetLicenseToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, granted, resp)

	reqs := srv.seen()
	require.Len(t, reqs, 1)
	assert.Equal(t, "alice", reqs[0].User())
	assert.Equal(t, "k1", reqs[0].Key())
}

func TestGetLicenseToken_ConnectionRefused(t *testing.T) {
	api := NewLicenseAPI(time.Second)
	api.Start(deadAddr(t))
	api.SetLicense("alice", "k1")

	resp, err := api.GetLicenseToken(context.Background())
	require.NoError(t, err)
	assert.False(t, resp.Licence)
	assert.Equal(t, "alice", resp.LicenceUserName)
	assert.Equal(t, common.ConnectFailedDescription, resp.Description)
}

func TestGetLicenseToken_NoResponse(t *testing.T) {
	srv := newFakeServer(t, nil)

	api := NewLicenseAPI(time.Second)
	api.Start(srv.addr())
	api.SetLicense("alice", "k1")

	_, err := api.GetLicenseToken(context.Background())
	assert.ErrorIs(t, err, ErrNoResponse)
}

func TestStop_ClearsCredentials(t *testing.T) {
	denied := protocol.Denied("", "License user name '' not found.")
	srv := newFakeServer(t, &denied)

	api := NewLicenseAPI(time.Second)
	api.Start(srv.addr())
	api.SetLicense("alice", "k1")
	api.Stop()

	_, err := api.GetLicenseToken(context.Background())
	require.NoError(t, err)

	reqs := srv.seen()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].User())
	assert.Empty(t, reqs[0].Key())
}

func TestGetLicenseToken_GarbageResponse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = io.ReadAtLeast(conn, make([]byte, 1), 1)
		_, _ = conn.Write([]byte("nope"))
	}()

	api := NewLicenseAPI(time.Second)
	api.Start(ln.Addr().String())
	api.SetLicense("alice", "k1")

	_, err = api.GetLicenseToken(context.Background())
	assert.Error(t, err)
}
