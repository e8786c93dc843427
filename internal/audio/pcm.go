// Package audio implements the canonical 16-bit PCM RIFF/WAVE codec the
// recording pipeline writes its mixed audio through.
package audio

import (
	"encoding/binary"
	"fmt"

	"github.com/btafoya/callrecorder/internal/recording"
)

// wavHeaderSize is the size of a canonical 44-byte PCM WAV header: the
// 12-byte RIFF/WAVE preamble, the 24-byte "fmt " chunk, and the 8-byte
// "data" chunk header.
const wavHeaderSize = 44

// WAVHeader holds the fields of a parsed "fmt " chunk.
type WAVHeader struct {
	AudioFormat   uint16 // 1 = PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// EncodePCM emits a canonical 16-bit PCM RIFF/WAVE file for the given
// interleaved samples, sample rate, and channel count.
func EncodePCM(samples []int16, rate uint32, channels uint16) []byte {
	dataSize := uint32(len(samples)) * 2
	byteRate := rate * uint32(channels) * 2
	blockAlign := channels * 2

	buf := make([]byte, wavHeaderSize+len(samples)*2)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(wavHeaderSize-8)+dataSize)
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], channels)
	binary.LittleEndian.PutUint32(buf[24:28], rate)
	binary.LittleEndian.PutUint32(buf[28:32], byteRate)
	binary.LittleEndian.PutUint16(buf[32:34], blockAlign)
	binary.LittleEndian.PutUint16(buf[34:36], 16) // bits per sample

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], dataSize)

	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[wavHeaderSize+2*i:], uint16(s))
	}

	return buf
}

// DecodedPCM is the result of decoding a canonical PCM WAV file.
type DecodedPCM struct {
	Samples  []int16
	Rate     uint32
	Channels uint16
}

// DecodePCM parses a canonical 16-bit PCM RIFF/WAVE file produced by
// EncodePCM (or any compatible writer). It rejects anything that is not
// PCM/16-bit, returning recording.ErrInvalidWav.
func DecodePCM(data []byte) (DecodedPCM, error) {
	if len(data) < 12 {
		return DecodedPCM{}, fmt.Errorf("%w: file too short", recording.ErrInvalidWav)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return DecodedPCM{}, fmt.Errorf("%w: missing RIFF/WAVE magic", recording.ErrInvalidWav)
	}

	var header WAVHeader
	var dataOffset, dataLen uint32
	foundFmt, foundData := false, false

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		body := offset + 8

		switch chunkID {
		case "fmt ":
			if uint32(len(data)-body) < chunkSize || chunkSize < 16 {
				return DecodedPCM{}, fmt.Errorf("%w: truncated fmt chunk", recording.ErrInvalidWav)
			}
			header.AudioFormat = binary.LittleEndian.Uint16(data[body : body+2])
			header.NumChannels = binary.LittleEndian.Uint16(data[body+2 : body+4])
			header.SampleRate = binary.LittleEndian.Uint32(data[body+4 : body+8])
			header.ByteRate = binary.LittleEndian.Uint32(data[body+8 : body+12])
			header.BlockAlign = binary.LittleEndian.Uint16(data[body+12 : body+14])
			header.BitsPerSample = binary.LittleEndian.Uint16(data[body+14 : body+16])
			foundFmt = true

		case "data":
			if uint32(len(data)-body) < chunkSize {
				return DecodedPCM{}, fmt.Errorf("%w: truncated data chunk", recording.ErrInvalidWav)
			}
			dataOffset = uint32(body)
			dataLen = chunkSize
			foundData = true
		}

		advance := int(chunkSize)
		if advance%2 == 1 {
			advance++ // chunks are word-aligned
		}
		offset = body + advance
	}

	if !foundFmt || !foundData {
		return DecodedPCM{}, fmt.Errorf("%w: missing fmt or data chunk", recording.ErrInvalidWav)
	}
	if header.AudioFormat != 1 {
		return DecodedPCM{}, fmt.Errorf("%w: audio format %d is not PCM", recording.ErrInvalidWav, header.AudioFormat)
	}
	if header.BitsPerSample != 16 {
		return DecodedPCM{}, fmt.Errorf("%w: %d bits per sample is not 16", recording.ErrInvalidWav, header.BitsPerSample)
	}
	if header.NumChannels == 0 {
		return DecodedPCM{}, fmt.Errorf("%w: zero channels", recording.ErrInvalidWav)
	}

	numSamples := dataLen / 2
	samples := make([]int16, numSamples)
	for i := uint32(0); i < numSamples; i++ {
		off := dataOffset + i*2
		samples[i] = int16(binary.LittleEndian.Uint16(data[off : off+2]))
	}

	return DecodedPCM{
		Samples:  samples,
		Rate:     header.SampleRate,
		Channels: header.NumChannels,
	}, nil
}

// CalculateDuration returns the playback duration in seconds for the
// given interleaved sample count, rate, and channel count.
func CalculateDuration(numSamples int, rate uint32, channels uint16) float64 {
	if rate == 0 || channels == 0 {
		return 0
	}
	return float64(numSamples) / (float64(rate) * float64(channels))
}

// ExpectedWavSize returns the total file size a canonical PCM WAV
// encoding of numSamples interleaved samples would occupy.
func ExpectedWavSize(numSamples int) int {
	return wavHeaderSize + 2*numSamples
}
