package rtp

import (
	"testing"
	"time"
)

func TestNewHeaderDefaults(t *testing.T) {
	h := NewHeader(0, 100, 1600, 0xdeadbeef)
	if h.Version != 2 {
		t.Errorf("Version = %d, want 2", h.Version)
	}
	if h.Padding || h.Extension || h.Marker {
		t.Errorf("expected all flags zero, got padding=%v extension=%v marker=%v", h.Padding, h.Extension, h.Marker)
	}
	if h.PayloadType != 0 {
		t.Errorf("PayloadType = %d, want 0", h.PayloadType)
	}
	if h.SequenceNumber != 100 {
		t.Errorf("SequenceNumber = %d, want 100", h.SequenceNumber)
	}
	if h.Timestamp != 1600 {
		t.Errorf("Timestamp = %d, want 1600", h.Timestamp)
	}
	if h.SSRC != 0xdeadbeef {
		t.Errorf("SSRC = %x, want deadbeef", h.SSRC)
	}
}

func TestMarshalParseRoundTrip(t *testing.T) {
	header := NewHeader(8, 42, 9600, 0x12345678)
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	pkt := NewPacket(header, payload)

	buf, err := pkt.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(buf) != 12+len(payload) {
		t.Fatalf("marshaled length = %d, want %d", len(buf), 12+len(payload))
	}

	parsed, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Header.PayloadType != 8 {
		t.Errorf("PayloadType = %d, want 8", parsed.Header.PayloadType)
	}
	if parsed.Header.SequenceNumber != 42 {
		t.Errorf("SequenceNumber = %d, want 42", parsed.Header.SequenceNumber)
	}
	if parsed.Header.Timestamp != 9600 {
		t.Errorf("Timestamp = %d, want 9600", parsed.Header.Timestamp)
	}
	if parsed.Header.SSRC != 0x12345678 {
		t.Errorf("SSRC = %x, want 12345678", parsed.Header.SSRC)
	}
	if string(parsed.Payload) != string(payload) {
		t.Errorf("Payload = %v, want %v", parsed.Payload, payload)
	}
}

func TestParseRejectsShortBuffer(t *testing.T) {
	_, err := Parse(make([]byte, 11))
	if err == nil {
		t.Fatal("expected error for buffer shorter than 12 bytes")
	}
}

func TestParseRejectsWrongVersion(t *testing.T) {
	header := NewHeader(0, 1, 1, 1)
	pkt := NewPacket(header, []byte{0})
	buf, err := pkt.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// Version occupies the top two bits of the first byte; force it to 1.
	buf[0] = (buf[0] &^ 0xC0) | (1 << 6)

	_, err = Parse(buf)
	if err == nil {
		t.Fatal("expected error for non-2 RTP version")
	}
}

func TestDirectionString(t *testing.T) {
	if Outgoing.String() != "outgoing" {
		t.Errorf("Outgoing.String() = %q, want outgoing", Outgoing.String())
	}
	if Incoming.String() != "incoming" {
		t.Errorf("Incoming.String() = %q, want incoming", Incoming.String())
	}
}

func TestNewCaptured(t *testing.T) {
	now := time.Now()
	pkt := NewPacket(NewHeader(0, 1, 160, 1), []byte{0xFF})
	cp := NewCaptured(pkt, Incoming, now)

	if cp.Direction != Incoming {
		t.Errorf("Direction = %v, want Incoming", cp.Direction)
	}
	if !cp.CapturedAt.Equal(now) {
		t.Errorf("CapturedAt = %v, want %v", cp.CapturedAt, now)
	}
	if cp.Packet.Header.Timestamp != 160 {
		t.Errorf("Packet.Header.Timestamp = %d, want 160", cp.Packet.Header.Timestamp)
	}
}
