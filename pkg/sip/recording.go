package sip

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/btafoya/callrecorder/internal/audio"
	"github.com/btafoya/callrecorder/internal/db"
	"github.com/btafoya/callrecorder/internal/models"
	"github.com/btafoya/callrecorder/internal/recording"
	"github.com/btafoya/callrecorder/internal/storage"
	"github.com/btafoya/callrecorder/pkg/mixer"
	"github.com/btafoya/callrecorder/pkg/recorder"
	rtppkt "github.com/btafoya/callrecorder/pkg/rtp"
	"github.com/google/uuid"
)

// RecordingManager is the orchestration layer between the SIP call
// lifecycle and the recording pipeline (pkg/recorder, pkg/mixer,
// internal/audio, internal/storage). It owns no codec/mixing/storage
// logic itself; it only calls into those packages at the pipeline's two
// natural boundary points: capture-in and mix-on-teardown.
type RecordingManager struct {
	storage *storage.LocalStorage
	mode    mixer.Mode
	rate    uint32
	maxPkts int
	repo    *db.RecordingRepository

	mu        sync.RWMutex
	recorders map[string]*recorder.Recorder
}

// NewRecordingManager builds a RecordingManager. store and repo are
// process-wide state, constructed once at startup and passed in by
// shared reference.
func NewRecordingManager(store *storage.LocalStorage, mode mixer.Mode, sampleRate uint32, maxPackets int, repo *db.RecordingRepository) *RecordingManager {
	return &RecordingManager{
		storage:   store,
		mode:      mode,
		rate:      sampleRate,
		maxPkts:   maxPackets,
		repo:      repo,
		recorders: make(map[string]*recorder.Recorder),
	}
}

// StartRecording creates and starts a Recorder for callID, bounded by the
// manager's packet limit (a limit <= 0 means unbounded retention). Safe
// to call once per call; calling it again for the same callID replaces
// the prior recorder (a re-INVITE should not normally trigger this).
func (m *RecordingManager) StartRecording(callID string) {
	r := recorder.New(m.maxPkts)
	r.Start()

	m.mu.Lock()
	m.recorders[callID] = r
	m.mu.Unlock()

	slog.Debug("recording started", "call_id", callID, "max_packets", m.maxPkts)
}

// CaptureRTP hands one captured RTP packet to callID's recorder. This is
// the method the media-layer RTP capture code calls for every packet. It
// is a no-op if the call has no active recorder (recording disabled, or
// StartRecording was never called for this call).
func (m *RecordingManager) CaptureRTP(callID string, pkt rtppkt.Packet, dir rtppkt.Direction) {
	m.mu.RLock()
	r, ok := m.recorders[callID]
	m.mu.RUnlock()
	if !ok {
		return
	}
	r.Capture(pkt, dir, time.Now())
}

// FinishRecording mixes, encodes, encrypts, and stores callID's captured
// packets, then persists a metadata row. It never returns an error: the
// caller (handleBye) must keep tearing down the call regardless, so
// failures are logged here instead of propagated.
func (m *RecordingManager) FinishRecording(ctx context.Context, callID string) {
	m.mu.Lock()
	r, ok := m.recorders[callID]
	if ok {
		delete(m.recorders, callID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	r.Stop()

	packets := r.GetPackets()
	if len(packets) == 0 {
		slog.Debug("recording finished with no captured packets", "call_id", callID)
		return
	}

	correlationID := uuid.NewString()
	pcm := mixer.Mix(packets, m.mode, m.rate)
	channels := uint16(1)
	if m.mode == mixer.Stereo {
		channels = 2
	}
	wavBytes := audio.EncodePCM(pcm, m.rate, channels)

	stored, err := m.storage.StoreRecording(callID, wavBytes, "wav")
	if err != nil {
		slog.Error("failed to store recording",
			"error", err, "kind", recording.KindOf(err),
			"call_id", callID, "correlation_id", correlationID)
		return
	}

	if m.repo != nil {
		rec := &models.Recording{
			CallID:       callID,
			RelativePath: stored.RelativePath,
			FileSize:     stored.FileSize,
			KeyID:        stored.KeyID,
			MixMode:      mixModeName(m.mode),
			SampleRate:   m.rate,
		}
		if err := m.repo.Create(ctx, rec); err != nil {
			slog.Error("failed to persist recording metadata",
				"error", err, "call_id", callID, "correlation_id", correlationID)
		}
	}

	slog.Info("recording stored",
		"call_id", callID,
		"path", stored.RelativePath,
		"size", stored.FileSize,
		"key_id", stored.KeyID,
	)
}

func mixModeName(mode mixer.Mode) string {
	if mode == mixer.Stereo {
		return "stereo"
	}
	return "mono"
}
