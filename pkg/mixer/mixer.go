// Package mixer reconstructs a wall-clock-aligned two-channel PCM
// timeline from a jittered, possibly-lossy set of captured RTP packets
// from both call directions. This is the hardest component in the
// recording pipeline: see the doc comment on Mix for the algorithm.
package mixer

import (
	"sort"

	"github.com/btafoya/callrecorder/pkg/codec"
	rtppkt "github.com/btafoya/callrecorder/pkg/rtp"
)

// Mode selects how the two call directions are combined.
type Mode int

const (
	// Mono sums both directions into a single channel with saturation.
	Mono Mode = iota
	// Stereo places outgoing in the left channel, incoming in the right,
	// with no summing.
	Stereo
)

// FrameSamples is the number of samples per 20ms G.711 frame at 8kHz, the
// only frame size this mixer's timeline math assumes.
const FrameSamples = 160

type frame struct {
	offset  uint32 // ts - base, in samples
	samples []int16
	seq     uint16
	order   int // insertion order, for stable tie-breaking
}

// Mix reorders, decodes, and aligns the captured packets into a single
// PCM stream.
//
// Algorithm:
//  1. Split captured packets by direction.
//  2. Decode each payload to 16-bit linear PCM using the codec implied by
//     its RTP payload type (0 = µ-law, 8 = A-law; anything else decodes
//     to one silent frame rather than failing the whole mix).
//  3. Sort each direction by RTP timestamp ascending, breaking ties by
//     sequence number then by original insertion order, so mixing is
//     stable under arrival reordering.
//  4. Establish base = the minimum RTP timestamp seen across both
//     directions (0 if there are no packets at all).
//  5. Paint each direction's decoded frames onto a zero-initialized PCM
//     timeline at offset (ts - base); gaps stay silent. A pathological
//     overlap within one direction is resolved by later-sorted frames
//     overwriting earlier ones.
//  6. Combine the two timelines per mode.
func Mix(packets []rtppkt.Captured, mode Mode, sampleRate uint32) []int16 {
	if len(packets) == 0 {
		return []int16{}
	}

	outFrames, inFrames := decodeByDirection(packets)

	base, length := timeline(outFrames, inFrames)
	if length == 0 {
		return []int16{}
	}

	outPCM := paint(outFrames, base, length)
	inPCM := paint(inFrames, base, length)

	if mode == Stereo {
		return interleaveStereo(outPCM, inPCM)
	}
	return mixMono(outPCM, inPCM)
}

// decodeByDirection splits packets by direction, decodes each payload to
// linear PCM, and sorts each direction's frames by RTP timestamp (then
// sequence, then insertion order).
func decodeByDirection(packets []rtppkt.Captured) (out, in []frame) {
	for i, cp := range packets {
		samples := decodePayload(cp.Packet.Header.PayloadType, cp.Packet.Payload)
		f := frame{
			offset:  cp.Packet.Header.Timestamp,
			samples: samples,
			seq:     cp.Packet.Header.SequenceNumber,
			order:   i,
		}
		if cp.Direction == rtppkt.Outgoing {
			out = append(out, f)
		} else {
			in = append(in, f)
		}
	}

	sortFrames(out)
	sortFrames(in)
	return out, in
}

func decodePayload(payloadType uint8, payload []byte) []int16 {
	law, ok := codec.LawFromPayloadType(payloadType)
	if !ok {
		// Unsupported payload type degrades to one silent frame; a single
		// unknown packet must not kill the whole recording.
		return make([]int16, FrameSamples)
	}
	return codec.Decode(law, payload)
}

func sortFrames(frames []frame) {
	sort.SliceStable(frames, func(i, j int) bool {
		a, b := frames[i], frames[j]
		if a.offset != b.offset {
			return a.offset < b.offset
		}
		if a.seq != b.seq {
			return a.seq < b.seq
		}
		return a.order < b.order
	})
}

// timeline computes base (the minimum RTP timestamp across both
// directions, 0 if both are empty) and the total span in samples from
// first to last frame, gap-filled.
func timeline(out, in []frame) (base uint32, length uint32) {
	has := false
	var minTS, maxEnd uint32

	consider := func(frames []frame) {
		for _, f := range frames {
			if !has || f.offset < minTS {
				minTS = f.offset
			}
			end := f.offset + uint32(len(f.samples))
			if end > maxEnd {
				maxEnd = end
			}
			has = true
		}
	}
	consider(out)
	consider(in)

	if !has {
		return 0, 0
	}
	return minTS, maxEnd - minTS
}

// paint allocates a zero-filled PCM buffer of the given length and copies
// each frame's samples at (ts - base). Overlapping frames within one
// direction overwrite in sort order (last write wins).
func paint(frames []frame, base uint32, length uint32) []int16 {
	pcm := make([]int16, length)
	for _, f := range frames {
		start := f.offset - base
		if start >= length {
			continue
		}
		end := start + uint32(len(f.samples))
		if end > length {
			end = length
		}
		copy(pcm[start:end], f.samples[:end-start])
	}
	return pcm
}

func interleaveStereo(out, in []int16) []int16 {
	result := make([]int16, 2*len(out))
	for i := range out {
		result[2*i] = out[i]
		result[2*i+1] = in[i]
	}
	return result
}

func mixMono(out, in []int16) []int16 {
	result := make([]int16, len(out))
	for i := range out {
		result[i] = saturate(int32(out[i]) + int32(in[i]))
	}
	return result
}

func saturate(v int32) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}
