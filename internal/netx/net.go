// Package netx holds the socket helpers shared by the license server and
// client: single-shot message reads, full writes and a one-request dial.
package netx

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/dmitrijs2005/mls/internal/common"
)

// ReadMessage performs one receive of at most limit bytes from conn. A
// positive timeout sets a read deadline first. A message longer than limit
// yields common.ErrRequestTooLarge.
func ReadMessage(conn net.Conn, limit int, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
	}

	buf := make([]byte, limit+1)
	n, err := conn.Read(buf)
	if n > limit {
		return nil, common.ErrRequestTooLarge
	}
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return nil, err
}

// WriteFull writes all of b to w, retrying short writes.
func WriteFull(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		b = b[n:]
	}
	return nil
}

// RoundTrip dials addr, sends req and returns everything the peer writes
// before closing the connection, capped at limit bytes.
func RoundTrip(ctx context.Context, addr string, req []byte, limit int) ([]byte, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := WriteFull(conn, req); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}

	resp, err := io.ReadAll(io.LimitReader(conn, int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("receive: %w", err)
	}
	return resp, nil
}
