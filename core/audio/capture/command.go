package capture

import (
	"runtime"
	"strconv"

	"github.com/voxline/vox-core/core/audio"
)

// defaultCaptureCommand returns the platform capture command configured for
// the fixed PCM format (mono, 16-bit signed, 16 kHz) on stdout.
func defaultCaptureCommand() []string {
	sampleRate := strconv.Itoa(audio.DefaultSampleRate)

	switch runtime.GOOS {
	case "darwin":
		return []string{
			"sox", "-d", "-q",
			"-t", "raw", "-r", sampleRate, "-e", "signed", "-b", "16", "-c", "1", "-",
		}
	default:
		return []string{
			"arecord", "-q",
			"-f", "S16_LE", "-r", sampleRate, "-c", "1", "-t", "raw", "-",
		}
	}
}
