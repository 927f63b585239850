// Package speechtotext defines the recognizer capability implemented by
// interchangeable speech-to-text backends. A recognizer consumes one complete
// recording and returns a trimmed transcript; no backend-specific
// post-processing leaks past this boundary.
package speechtotext

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when a recognizer is not configured or its
// credentials/binaries are missing. Unlike transient call failures, callers
// should not retry it.
var ErrUnavailable = errors.New("recognizer unavailable")

// Transcriber converts a completed PCM recording into text.
type Transcriber interface {
	// Transcribe blocks until the recording has been transcribed. The
	// returned transcript is trimmed and may be empty when the recording
	// contained no recognizable speech.
	Transcribe(ctx context.Context, pcm []byte, opts ...TranscriptionOption) (string, error)
	// IsAvailable reports whether the recognizer can currently serve calls.
	IsAvailable() bool
	// Close releases any resources held by the recognizer.
	Close(ctx context.Context) error
}
