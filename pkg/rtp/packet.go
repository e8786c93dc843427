// Package rtp provides the RTP packet model the recording pipeline
// captures: a thin wrapper over github.com/pion/rtp tagged with capture
// direction and wall-clock time.
package rtp

import (
	"fmt"
	"time"

	pionrtp "github.com/pion/rtp"
)

// Direction identifies which end of a call produced a captured packet.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

func (d Direction) String() string {
	if d == Incoming {
		return "incoming"
	}
	return "outgoing"
}

// Packet is a parsed RTP header plus its opaque payload. It is a value
// type so callers can freely copy and sort slices of it.
type Packet struct {
	Header  pionrtp.Header
	Payload []byte
}

// NewHeader builds an RTP header with version 2 and all flags zero, the
// shape RTP packets take when this recorder (rather than a peer) would
// need to construct one.
func NewHeader(payloadType uint8, sequence uint16, timestamp, ssrc uint32) pionrtp.Header {
	return pionrtp.Header{
		Version:        2,
		PayloadType:    payloadType,
		SequenceNumber: sequence,
		Timestamp:      timestamp,
		SSRC:           ssrc,
	}
}

// NewPacket builds a Packet from a header and payload.
func NewPacket(header pionrtp.Header, payload []byte) Packet {
	return Packet{Header: header, Payload: payload}
}

// Marshal serialises the packet to wire format (12-byte header, no CSRC,
// per RFC 3550) followed by the payload.
func (p Packet) Marshal() ([]byte, error) {
	pkt := pionrtp.Packet{Header: p.Header, Payload: p.Payload}
	return pkt.Marshal()
}

// Parse parses a wire-format RTP packet. It rejects buffers shorter than
// the fixed 12-byte header or whose version is not 2; CSRC entries and
// extensions are tolerated (pion/rtp skips over them) but not retained
// beyond what Header exposes.
func Parse(buf []byte) (Packet, error) {
	if len(buf) < 12 {
		return Packet{}, fmt.Errorf("rtp: packet too short: %d bytes", len(buf))
	}
	var pkt pionrtp.Packet
	if err := pkt.Unmarshal(buf); err != nil {
		return Packet{}, fmt.Errorf("rtp: parse: %w", err)
	}
	if pkt.Header.Version != 2 {
		return Packet{}, fmt.Errorf("rtp: unsupported version %d", pkt.Header.Version)
	}
	return Packet{Header: pkt.Header, Payload: pkt.Payload}, nil
}

// Captured pairs an RTP packet with the direction it was captured from
// and the wall-clock time capture happened. CapturedAt is informational
// only: the mixer orders frames by RTP timestamp, never by capture time.
type Captured struct {
	Packet     Packet
	Direction  Direction
	CapturedAt time.Time
}

// NewCaptured wraps a packet with its capture direction and time.
func NewCaptured(pkt Packet, dir Direction, capturedAt time.Time) Captured {
	return Captured{Packet: pkt, Direction: dir, CapturedAt: capturedAt}
}
