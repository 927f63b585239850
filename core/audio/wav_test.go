package audio

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestWAVRoundTripPreservesSampleData(t *testing.T) {
	pcm := make([]byte, 3200)
	for i := range pcm {
		pcm[i] = byte(i % 251)
	}

	wav, err := EncodeWAV(pcm, GetDefaultEncodingInfo())
	if err != nil {
		t.Fatalf("expected encode to succeed, got %v", err)
	}
	if len(wav) != 44+len(pcm) {
		t.Fatalf("expected %d byte container, got %d", 44+len(pcm), len(wav))
	}

	decoded, encoding, err := DecodeWAV(wav)
	if err != nil {
		t.Fatalf("expected decode to succeed, got %v", err)
	}
	if !bytes.Equal(decoded, pcm) {
		t.Fatalf("expected decoded samples to match original")
	}
	if encoding.SampleRate != DefaultSampleRate {
		t.Fatalf("expected sample rate %d, got %d", DefaultSampleRate, encoding.SampleRate)
	}
	if encoding.Format != EncodingLinear16 {
		t.Fatalf("expected linear16 format, got %q", encoding.Format.Name())
	}
}

func TestEncodeWAVHeaderFields(t *testing.T) {
	pcm := make([]byte, 320)
	wav, err := EncodeWAV(pcm, GetDefaultEncodingInfo())
	if err != nil {
		t.Fatalf("expected encode to succeed, got %v", err)
	}

	if got := string(wav[0:4]); got != "RIFF" {
		t.Fatalf("expected RIFF magic, got %q", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Fatalf("expected 1 channel, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != DefaultSampleRate {
		t.Fatalf("expected sample rate %d, got %d", DefaultSampleRate, got)
	}
	if got := binary.LittleEndian.Uint16(wav[34:36]); got != 16 {
		t.Fatalf("expected 16 bits per sample, got %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Fatalf("expected data length %d, got %d", len(pcm), got)
	}
}

func TestEncodeWAVRejectsCompressedFormats(t *testing.T) {
	_, err := EncodeWAV(nil, EncodingInfo{SampleRate: 16000, Format: EncodingMP3})
	if err == nil {
		t.Fatalf("expected error for compressed format")
	}
}

func TestDecodeWAVRejectsTruncatedInput(t *testing.T) {
	if _, _, err := DecodeWAV([]byte("RIFF")); err == nil {
		t.Fatalf("expected error for truncated input")
	}
}
