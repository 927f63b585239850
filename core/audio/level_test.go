package audio

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestLevelOfSilenceIsZero(t *testing.T) {
	if got := Level(make([]byte, 640)); got != 0 {
		t.Fatalf("expected zero level for silence, got %f", got)
	}
}

func TestLevelOfEmptyChunkIsZero(t *testing.T) {
	if got := Level(nil); got != 0 {
		t.Fatalf("expected zero level for empty chunk, got %f", got)
	}
}

func TestLevelOfFullScaleIsOne(t *testing.T) {
	chunk := make([]byte, 640)
	for i := 0; i < len(chunk); i += 2 {
		binary.LittleEndian.PutUint16(chunk[i:i+2], uint16(int16(math.MaxInt16)))
	}

	if got := Level(chunk); math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected full-scale level 1, got %f", got)
	}
}

func TestLevelIsClampedToOne(t *testing.T) {
	chunk := make([]byte, 64)
	sample := int16(math.MinInt16)
	for i := 0; i < len(chunk); i += 2 {
		binary.LittleEndian.PutUint16(chunk[i:i+2], uint16(sample))
	}

	if got := Level(chunk); got > 1 {
		t.Fatalf("expected level clamped to 1, got %f", got)
	}
}
