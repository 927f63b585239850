package audio

import (
	"encoding/binary"
	"math"
)

// Level computes the RMS level of a chunk of little-endian signed 16-bit
// samples, normalized against full-scale amplitude to [0, 1].
func Level(chunk []byte) float64 {
	sampleCount := len(chunk) / 2
	if sampleCount == 0 {
		return 0
	}

	var sumSquares float64
	for i := 0; i < sampleCount*2; i += 2 {
		sample := int16(binary.LittleEndian.Uint16(chunk[i : i+2]))
		sumSquares += float64(sample) * float64(sample)
	}

	level := math.Sqrt(sumSquares/float64(sampleCount)) / math.MaxInt16
	return math.Min(level, 1)
}
