package audio

import (
	"encoding/binary"
	"fmt"
)

// wavHeaderSize is the size of a canonical PCM WAV header: RIFF descriptor,
// a single "fmt " chunk and the "data" chunk header.
const wavHeaderSize = 44

// EncodeWAV wraps raw PCM samples in a minimal WAV container so they can be
// handed to backends that require a self-describing file. Only uncompressed
// formats are supported.
func EncodeWAV(pcm []byte, encoding EncodingInfo) ([]byte, error) {
	if encoding.IsZero() {
		encoding = GetDefaultEncodingInfo()
	}
	if encoding.Format.IsCompressed() {
		return nil, fmt.Errorf("cannot build wav container for compressed format %q", encoding.Format.Name())
	}

	const channels = 1
	bytesPerSample := encoding.Format.ByteSize()
	byteRate := encoding.SampleRate * channels * bytesPerSample

	out := make([]byte, wavHeaderSize+len(pcm))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+len(pcm)))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], channels)
	binary.LittleEndian.PutUint32(out[24:28], uint32(encoding.SampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(channels*bytesPerSample))
	binary.LittleEndian.PutUint16(out[34:36], uint16(bytesPerSample*8))
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(pcm)))
	copy(out[wavHeaderSize:], pcm)

	return out, nil
}

// DecodeWAV extracts the raw sample data from a canonical WAV container
// produced by [EncodeWAV].
func DecodeWAV(wav []byte) ([]byte, EncodingInfo, error) {
	if len(wav) < wavHeaderSize {
		return nil, EncodingInfo{}, fmt.Errorf("wav data too short: %d bytes", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, EncodingInfo{}, fmt.Errorf("missing RIFF/WAVE header")
	}
	if string(wav[36:40]) != "data" {
		return nil, EncodingInfo{}, fmt.Errorf("missing data chunk header")
	}

	sampleRate := int(binary.LittleEndian.Uint32(wav[24:28]))
	bitsPerSample := int(binary.LittleEndian.Uint16(wav[34:36]))
	dataLen := int(binary.LittleEndian.Uint32(wav[40:44]))
	if dataLen > len(wav)-wavHeaderSize {
		return nil, EncodingInfo{}, fmt.Errorf("data chunk length %d exceeds payload %d", dataLen, len(wav)-wavHeaderSize)
	}

	format := EncodingLinear16
	if bitsPerSample == 8 {
		format = EncodingMulaw
	}

	return wav[wavHeaderSize : wavHeaderSize+dataLen], EncodingInfo{SampleRate: sampleRate, Format: format}, nil
}
