// Package sip provides the SIP call-lifecycle boundary the recording
// pipeline hangs off of, using sipgo. It owns only enough signalling to
// know when a call starts and ends (INVITE/ACK/BYE) plus OPTIONS for
// capability probing; everything else about a call's media, routing, and
// device state lives outside this package.
package sip

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	rtppkt "github.com/btafoya/callrecorder/pkg/rtp"
	"github.com/emiago/sipgo"
)

// Config holds SIP server configuration
type Config struct {
	Port      int
	UserAgent string
}

// Server wraps sipgo server with the minimal call-lifecycle handling the
// recording pipeline needs.
type Server struct {
	cfg    Config
	ua     *sipgo.UserAgent
	srv    *sipgo.Server
	client *sipgo.Client

	// Call recording (nil when recording is disabled)
	recordings *RecordingManager

	mu          sync.RWMutex
	running     bool
	cancelFn    context.CancelFunc
	activeCalls int
}

// NewServer creates a new SIP server
func NewServer(cfg Config) (*Server, error) {
	ua, err := sipgo.NewUA(
		sipgo.WithUserAgent(cfg.UserAgent),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user agent: %w", err)
	}

	srv, err := sipgo.NewServer(ua)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	client, err := sipgo.NewClient(ua)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Server{
		cfg:    cfg,
		ua:     ua,
		srv:    srv,
		client: client,
	}, nil
}

// Start begins listening for SIP messages
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancelFn = cancel

	s.srv.OnInvite(s.handleInvite)
	s.srv.OnAck(s.handleAck)
	s.srv.OnBye(s.handleBye)
	s.srv.OnOptions(s.handleOptions)

	addr := fmt.Sprintf("0.0.0.0:%d", s.cfg.Port)

	go func() {
		slog.Info("Starting SIP UDP listener", "addr", addr)
		if err := s.srv.ListenAndServe(ctx, "udp", addr); err != nil {
			slog.Error("SIP UDP listener error", "error", err)
		}
	}()

	go func() {
		slog.Info("Starting SIP TCP listener", "addr", addr)
		if err := s.srv.ListenAndServe(ctx, "tcp", addr); err != nil {
			slog.Error("SIP TCP listener error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the SIP server
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	if s.cancelFn != nil {
		s.cancelFn()
	}

	s.running = false
	slog.Info("SIP server stopped")
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// GetActiveCallCount returns the number of currently active calls
func (s *Server) GetActiveCallCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeCalls
}

func (s *Server) incrementCallCount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeCalls++
}

func (s *Server) decrementCallCount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeCalls > 0 {
		s.activeCalls--
	}
}

// SetRecordingManager wires the recording pipeline into the server. Call
// it once at startup, after NewServer, when cfg.RecordingEnabled is true
// (cmd/callrecorder/main.go does this right after constructing the SIP
// server).
func (s *Server) SetRecordingManager(mgr *RecordingManager) {
	s.recordings = mgr
}

// CaptureRTP hands one captured RTP packet from the media layer (owned by
// a different package) to the active call's recorder. It is a no-op if
// recording is disabled or the call has no active recorder.
func (s *Server) CaptureRTP(callID string, pkt rtppkt.Packet, dir rtppkt.Direction) {
	if s.recordings == nil {
		return
	}
	s.recordings.CaptureRTP(callID, pkt, dir)
}
