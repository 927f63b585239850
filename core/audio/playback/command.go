package playback

import (
	"runtime"
	"strconv"

	"github.com/voxline/vox-core/core/audio"
)

// defaultPlayerCommand returns the external player used for compressed audio
// streamed over stdin.
func defaultPlayerCommand() []string {
	return []string{"ffplay", "-autoexit", "-nodisp", "-loglevel", "quiet", "-i", "-"}
}

// defaultRawCommand returns the subprocess used for raw PCM when no
// in-process sink is configured.
func defaultRawCommand() []string {
	sampleRate := strconv.Itoa(audio.DefaultSampleRate)

	switch runtime.GOOS {
	case "darwin":
		return []string{
			"play", "-q",
			"-t", "raw", "-r", sampleRate, "-e", "signed", "-b", "16", "-c", "1", "-",
		}
	default:
		return []string{
			"aplay", "-q",
			"-f", "S16_LE", "-r", sampleRate, "-c", "1", "-t", "raw", "-",
		}
	}
}
