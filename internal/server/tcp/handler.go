package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dmitrijs2005/mls/internal/common"
	"github.com/dmitrijs2005/mls/internal/netx"
	"github.com/dmitrijs2005/mls/internal/server/metrics"
	"github.com/dmitrijs2005/mls/internal/server/protocol"
	"github.com/google/uuid"
)

// handleConn runs one request/response exchange and closes conn. Malformed
// requests are dropped without a response.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	logger := s.logger.With("conn_id", uuid.NewString(), "remote", conn.RemoteAddr().String())

	data, err := netx.ReadMessage(conn, s.maxRequestSize, s.readTimeout)
	if err != nil {
		outcome := metrics.OutcomeTransport
		if errors.Is(err, common.ErrRequestTooLarge) {
			outcome = metrics.OutcomeMalformed
		}
		logger.Warn(ctx, "Read failed", "error", err.Error())
		s.metrics.ObserveRequest(outcome)
		return
	}
	arrival := s.clock.Now()

	req, err := protocol.DecodeRequest(data)
	if err != nil {
		logger.Warn(ctx, "Malformed request", "error", err.Error())
		s.metrics.ObserveRequest(metrics.OutcomeMalformed)
		return
	}

	resp, outcome := s.process(req.User(), req.Key(), arrival)

	b, err := protocol.EncodeResponse(resp)
	if err != nil {
		logger.Error(ctx, "Encode failed", "error", err.Error())
		return
	}
	if s.readTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.readTimeout))
	}
	if err := netx.WriteFull(conn, b); err != nil {
		logger.Warn(ctx, "Write failed", "error", err.Error())
		s.metrics.ObserveRequest(metrics.OutcomeTransport)
		return
	}

	s.metrics.ObserveRequest(outcome)
	if resp.Licence {
		logger.Info(ctx, "License granted", "user", resp.LicenceUserName, "expires_at", resp.Expired)
	} else {
		logger.Info(ctx, "License denied", "user", resp.LicenceUserName, "reason", resp.Description)
	}
}

// process validates the request and, when allowed, records a lease expiring
// LeaseDuration after arrival.
func (s *Server) process(user, key string, arrival time.Time) (protocol.Response, string) {
	decision := s.validator.Validate(user, key)
	if !decision.Granted {
		return protocol.Denied(user, decision.Reason), metrics.OutcomeDenied
	}

	expiresAt, err := s.table.TryGrant(user, decision.LeaseDuration, arrival)
	if err != nil {
		return protocol.Denied(user, fmt.Sprintf("License for user '%s' is already active.", user)),
			metrics.OutcomeAlreadyActive
	}

	s.metrics.SetActive(s.table.Len())
	return protocol.Granted(user, expiresAt), metrics.OutcomeGranted
}
