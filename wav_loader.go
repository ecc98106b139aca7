// wav_loader.go - RIFF/WAVE PCM16 decoding for the creak loop buffer

package main

import (
	"encoding/binary"
	"fmt"
	"os"
)

const WAV_FORMAT_PCM = 1

// LoadWAV reads a WAV file and returns its samples as mono float32 along
// with the native sample rate.
func LoadWAV(path string) ([]float32, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read WAV file: %w", err)
	}
	return DecodeWAV(data)
}

// DecodeWAV decodes a 16-bit PCM RIFF/WAVE blob. Stereo (or wider) content
// is downmixed to mono by averaging channels.
func DecodeWAV(data []byte) ([]float32, int, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a RIFF/WAVE file")
	}

	var (
		channels   int
		sampleRate int
		bits       int
		payload    []byte
		haveFmt    bool
	)

	// Walk the chunk list. Chunk bodies are padded to even length.
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if size < 0 || body+size > len(data) {
			return nil, 0, fmt.Errorf("truncated %q chunk", id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, fmt.Errorf("fmt chunk too short: %d bytes", size)
			}
			format := int(binary.LittleEndian.Uint16(data[body : body+2]))
			if format != WAV_FORMAT_PCM {
				return nil, 0, fmt.Errorf("unsupported WAV format %d, want PCM", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFmt = true
		case "data":
			payload = data[body : body+size]
		}

		pos = body + size
		if size%2 == 1 {
			pos++
		}
	}

	if !haveFmt {
		return nil, 0, fmt.Errorf("missing fmt chunk")
	}
	if payload == nil {
		return nil, 0, fmt.Errorf("missing data chunk")
	}
	if bits != 16 {
		return nil, 0, fmt.Errorf("unsupported bit depth %d, want 16", bits)
	}
	if channels < 1 {
		return nil, 0, fmt.Errorf("invalid channel count %d", channels)
	}
	if sampleRate <= 0 {
		return nil, 0, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	frameBytes := 2 * channels
	frames := len(payload) / frameBytes
	if frames == 0 {
		return nil, 0, fmt.Errorf("empty data chunk")
	}

	samples := make([]float32, frames)
	for f := 0; f < frames; f++ {
		var sum float64
		base := f * frameBytes
		for c := 0; c < channels; c++ {
			v := int16(binary.LittleEndian.Uint16(payload[base+2*c : base+2*c+2]))
			sum += float64(v) / 32768.0
		}
		samples[f] = float32(sum / float64(channels))
	}
	return samples, sampleRate, nil
}
