package sip

import (
	"context"
	"log/slog"

	"github.com/btafoya/callrecorder/internal/config"
	"github.com/emiago/sipgo/sip"
)

// handleInvite processes INVITE requests for incoming calls. It does not
// model call routing, authentication, or device state — those belong to
// the host PBX this package plugs into; all this handler needs to know
// is that a call started, so the recording pipeline can start capturing
// its RTP.
func (s *Server) handleInvite(req *sip.Request, tx sip.ServerTransaction) {
	_, cancel := context.WithTimeout(context.Background(), config.CallSetupTimeout)
	defer cancel()

	callID := req.CallID().Value()

	slog.Debug("Received INVITE request",
		"call_id", callID,
		"from", req.From().Address.String(),
		"to", req.To().Address.String(),
	)

	s.sendResponse(tx, req, sip.StatusTrying, "Trying")

	s.incrementCallCount()
	if s.recordings != nil {
		s.recordings.StartRecording(callID)
	}

	s.sendResponse(tx, req, sip.StatusOK, "OK")
}

// handleAck processes ACK requests
func (s *Server) handleAck(req *sip.Request, tx sip.ServerTransaction) {
	slog.Debug("Received ACK request", "call_id", req.CallID().Value())
	// ACK doesn't require a response
}

// handleBye processes BYE requests to end calls. Mixing, encrypting, and
// storing the recording happens here, on call teardown; a failed
// recording must never block hanging up a live call, so FinishRecording
// only logs its own errors.
func (s *Server) handleBye(req *sip.Request, tx sip.ServerTransaction) {
	callID := req.CallID().Value()
	slog.Debug("Received BYE request", "call_id", callID)

	if s.recordings != nil {
		s.recordings.FinishRecording(context.Background(), callID)
	}

	s.decrementCallCount()
	slog.Info("Call terminated", "call_id", callID)

	s.sendResponse(tx, req, sip.StatusOK, "OK")
}

// handleOptions processes OPTIONS requests (health check / capabilities)
func (s *Server) handleOptions(req *sip.Request, tx sip.ServerTransaction) {
	slog.Debug("Received OPTIONS request", "from", req.From().Address.String())

	res := sip.NewResponseFromRequest(req, sip.StatusOK, "OK", nil)
	res.AppendHeader(sip.NewHeader("Allow", "INVITE, ACK, OPTIONS, BYE"))
	res.AppendHeader(sip.NewHeader("Accept", "application/sdp"))
	res.AppendHeader(sip.NewHeader("Accept-Language", "en"))

	if err := tx.Respond(res); err != nil {
		slog.Error("Failed to send OPTIONS response", "error", err)
	}
}

// sendResponse sends a simple response
func (s *Server) sendResponse(tx sip.ServerTransaction, req *sip.Request, statusCode sip.StatusCode, reason string) {
	res := sip.NewResponseFromRequest(req, statusCode, reason, nil)
	if err := tx.Respond(res); err != nil {
		slog.Error("Failed to send response", "error", err, "status", statusCode)
	}
}
