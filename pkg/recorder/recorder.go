// Package recorder implements the concurrently-shared RTP capture buffer:
// any number of producers call Capture while a single consumer later
// drains a snapshot with GetPackets at mix time.
package recorder

import (
	"sync"
	"time"

	rtppkt "github.com/btafoya/callrecorder/pkg/rtp"
)

// Recorder is a thread-safe, optionally bounded buffer of captured RTP
// packets. Construct with New; the zero value is not usable.
type Recorder struct {
	mu       sync.Mutex
	capacity int // <=0 means unbounded
	active   bool
	packets  []rtppkt.Captured
	// dropped counts how many packets have been evicted since the last
	// Start, for diagnostics only.
	dropped uint64
}

// New creates a Recorder. capacity <= 0 means unbounded retention: the
// buffer grows for the life of the call, roughly 12 KB/s/direction of
// µ-law at 8 kHz.
func New(capacity int) *Recorder {
	return &Recorder{capacity: capacity}
}

// Start marks the recorder active and clears any prior buffer content.
// Idempotent: calling Start twice in a row just clears again.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = true
	r.packets = nil
	r.dropped = 0
}

// Stop marks the recorder inactive. Idempotent. The buffer is left intact
// so GetPackets still works after Stop.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
}

// Capture appends a captured packet. If the recorder is inactive this is
// a no-op. If capacity is set and would be exceeded, the oldest entry is
// evicted (FIFO) so the buffer always retains the most recent `capacity`
// packets.
func (r *Recorder) Capture(pkt rtppkt.Packet, dir rtppkt.Direction, capturedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return
	}

	r.packets = append(r.packets, rtppkt.NewCaptured(pkt, dir, capturedAt))

	if r.capacity > 0 && len(r.packets) > r.capacity {
		evict := len(r.packets) - r.capacity
		r.packets = r.packets[evict:]
		r.dropped += uint64(evict)
	}
}

// PacketCount returns the current number of buffered packets.
func (r *Recorder) PacketCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.packets)
}

// GetPackets returns a cloned snapshot of the buffer in insertion order.
// Valid to call in any state (active, inactive, empty).
func (r *Recorder) GetPackets() []rtppkt.Captured {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]rtppkt.Captured, len(r.packets))
	copy(out, r.packets)
	return out
}

// Dropped returns how many packets have been evicted by FIFO overflow
// since the last Start.
func (r *Recorder) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
